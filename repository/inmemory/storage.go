package storage

import (
	"context"
	"sort"
	"sync"

	"tareas/internal/domain/errors"
	"tareas/internal/domain/models"
)

// Storage keeps users and tasks in process memory. It is used when no SQL
// backend is reachable and by tests.
type Storage struct {
	mu         sync.RWMutex
	users      map[int64]models.User
	tasks      map[int64]models.Task
	nextUserID int64
	nextTaskID int64
}

func NewStorage() *Storage {
	return &Storage{
		users: make(map[int64]models.User),
		tasks: make(map[int64]models.Task),
	}
}

func (s *Storage) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return errors.ErrEmailTaken
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (s *Storage) ListTasks(_ context.Context, ownerID int64) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := []models.Task{}
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			tasks = append(tasks, cloneTask(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
	return tasks, nil
}

func (s *Storage) GetTask(_ context.Context, ownerID, id int64) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, errors.ErrTaskNotFound
	}
	task = cloneTask(task)
	return &task, nil
}

func (s *Storage) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTaskID++
	task.ID = s.nextTaskID
	s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (s *Storage) UpdateTask(_ context.Context, ownerID, id int64, assignments []models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return errors.ErrTaskNotFound
	}
	task.Apply(assignments)
	s.tasks[id] = task
	return nil
}

func (s *Storage) DeleteTask(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return errors.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// cloneTask copies the pointer fields so callers never share them with the map.
func cloneTask(t models.Task) models.Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}
