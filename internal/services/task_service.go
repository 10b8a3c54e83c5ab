package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator"

	domainerrors "tareas/internal/domain/errors"
	"tareas/internal/domain/models"
	"tareas/internal/logger"
)

type TaskService struct {
	tasks    TaskRepository
	now      Clock
	validate *validator.Validate
	log      *logger.Logger
}

type TaskOption func(*TaskService)

func WithTaskClock(now Clock) TaskOption {
	return func(s *TaskService) { s.now = now }
}

func NewTaskService(tasks TaskRepository, log *logger.Logger, opts ...TaskOption) *TaskService {
	s := &TaskService{
		tasks:    tasks,
		now:      systemClock,
		validate: newValidator(),
		log:      log.With("service", "TaskService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every task owned by userID, newest first. Filtering is left to
// the client.
func (s *TaskService) List(ctx context.Context, userID int64) ([]models.Task, error) {
	tasks, err := s.tasks.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	return s.tasks.GetTask(ctx, userID, taskID)
}

func (s *TaskService) Create(ctx context.Context, userID int64, req models.CreateTaskRequest) (*models.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) == "" {
		req.DueDate = nil
	}
	if err := validateStruct(s.validate, req, taskMessages); err != nil {
		return nil, err
	}

	now := stamp(s.now)
	task := &models.Task{
		OwnerID:   userID,
		Title:     req.Title,
		Priority:  req.Priority,
		Status:    req.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil && *req.Description != "" {
		desc := *req.Description
		task.Description = &desc
	}
	if req.DueDate != nil {
		due, _ := models.NormalizeDueDate(*req.DueDate)
		task.DueDate = &due
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	s.log.Debug("task created", "task_id", task.ID, "user_id", userID)
	return task, nil
}

// Update applies a partial update. Field errors are reported before ownership,
// and an empty patch only after ownership is confirmed.
func (s *TaskService) Update(ctx context.Context, userID, taskID int64, patch models.TaskPatch) (*models.Task, error) {
	patch, err := s.checkPatch(patch)
	if err != nil {
		return nil, err
	}

	if _, err := s.tasks.GetTask(ctx, userID, taskID); err != nil {
		return nil, err
	}

	if patch.Empty() {
		return nil, domainerrors.NewValidationError(domainerrors.FieldError{Msg: "No hay campos para actualizar"})
	}

	if err := s.tasks.UpdateTask(ctx, userID, taskID, patch.Assignments(stamp(s.now))); err != nil {
		return nil, err
	}
	s.log.Debug("task updated", "task_id", taskID, "user_id", userID)
	return s.tasks.GetTask(ctx, userID, taskID)
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID int64) error {
	if err := s.tasks.DeleteTask(ctx, userID, taskID); err != nil {
		return err
	}
	s.log.Debug("task deleted", "task_id", taskID, "user_id", userID)
	return nil
}

// checkPatch validates the fields present in the patch and returns it with
// the due date normalized.
func (s *TaskService) checkPatch(patch models.TaskPatch) (models.TaskPatch, error) {
	var fields []domainerrors.FieldError
	reject := func(field string) {
		fields = append(fields, domainerrors.FieldError{Field: field, Msg: taskMessages.lookup(field, "")})
	}

	if patch.Title.Set {
		if v, ok := patch.Title.Get(); !ok || strings.TrimSpace(v) == "" {
			fields = append(fields, domainerrors.FieldError{Field: models.ColTitle, Msg: "El título no puede estar vacío"})
		}
	}
	if patch.Priority.Set {
		if v, ok := patch.Priority.Get(); !ok || s.validate.Var(string(v), "required,"+priorityRule) != nil {
			reject(models.ColPriority)
		}
	}
	if patch.Status.Set {
		if v, ok := patch.Status.Get(); !ok || s.validate.Var(string(v), "required,"+statusRule) != nil {
			reject(models.ColStatus)
		}
	}
	if v, ok := patch.DueDate.Get(); ok {
		if strings.TrimSpace(v) == "" {
			patch.DueDate.Value = ""
		} else if err := s.validate.Var(v, "isodate"); err != nil {
			reject(models.ColDueDate)
		} else {
			patch.DueDate.Value, _ = models.NormalizeDueDate(v)
		}
	}

	if len(fields) > 0 {
		return patch, domainerrors.NewValidationError(fields...)
	}
	return patch, nil
}
