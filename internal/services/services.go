package services

import (
	"context"
	"time"

	"tareas/internal/domain/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TaskRepository methods are scoped by owner: a task owned by someone else
// is reported as errors.ErrTaskNotFound.
type TaskRepository interface {
	ListTasks(ctx context.Context, ownerID int64) ([]models.Task, error)
	GetTask(ctx context.Context, ownerID, id int64) (*models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, ownerID, id int64, assignments []models.Assignment) error
	DeleteTask(ctx context.Context, ownerID, id int64) error
}

type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

// stamp is the timestamp stored for mutations: UTC at microsecond precision so
// it round-trips through every backing store unchanged.
func stamp(now Clock) time.Time {
	return now().UTC().Truncate(time.Microsecond)
}
