package client

import (
	"context"
	"errors"
	"slices"

	"tareas/internal/domain/models"
)

var ErrNotSignedIn = errors.New("Inicia sesión primero")

// Shell is the client state machine: the session, the last fetched task list
// and the active filter. Every successful mutation ends with a full refetch.
type Shell struct {
	api     *APIClient
	session *Session
	tasks   []models.Task
	filter  Filter
}

func NewShell(api *APIClient, session *Session) *Shell {
	return &Shell{api: api, session: session}
}

func (s *Shell) Session() *Session { return s.session }

// Init restores a persisted session and, when there is one, fetches tasks.
func (s *Shell) Init(ctx context.Context) error {
	restored, err := s.session.Restore()
	if err != nil || !restored {
		return err
	}
	return s.Refresh(ctx)
}

func (s *Shell) Register(ctx context.Context, req models.RegisterRequest) error {
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return err
	}
	return s.begin(ctx, resp)
}

func (s *Shell) Login(ctx context.Context, req models.LoginRequest) error {
	resp, err := s.api.Login(ctx, req)
	if err != nil {
		return err
	}
	return s.begin(ctx, resp)
}

func (s *Shell) begin(ctx context.Context, resp models.AuthResponse) error {
	if err := s.session.Begin(resp.Token, resp.User); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *Shell) Logout() error {
	s.tasks = nil
	s.filter = Filter{}
	return s.session.End()
}

// Refresh replaces the working copy with the server's list. A rejected token
// ends the session.
func (s *Shell) Refresh(ctx context.Context) error {
	if !s.session.Authenticated() {
		return ErrNotSignedIn
	}
	tasks, err := s.api.ListTasks(ctx, s.session.Token())
	if err != nil {
		return s.rejected(err)
	}
	s.tasks = tasks
	return nil
}

func (s *Shell) CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	if !s.session.Authenticated() {
		return nil, ErrNotSignedIn
	}
	task, err := s.api.CreateTask(ctx, s.session.Token(), req)
	if err != nil {
		return nil, s.rejected(err)
	}
	return task, s.Refresh(ctx)
}

func (s *Shell) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (*models.Task, error) {
	if !s.session.Authenticated() {
		return nil, ErrNotSignedIn
	}
	task, err := s.api.UpdateTask(ctx, s.session.Token(), id, patch)
	if err != nil {
		return nil, s.rejected(err)
	}
	return task, s.Refresh(ctx)
}

func (s *Shell) DeleteTask(ctx context.Context, id int64) error {
	if !s.session.Authenticated() {
		return ErrNotSignedIn
	}
	if err := s.api.DeleteTask(ctx, s.session.Token(), id); err != nil {
		return s.rejected(err)
	}
	return s.Refresh(ctx)
}

func (s *Shell) rejected(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.SessionRejected() {
		if endErr := s.Logout(); endErr != nil {
			return errors.Join(err, endErr)
		}
	}
	return err
}

func (s *Shell) SetFilter(f Filter) { s.filter = f }

func (s *Shell) Filter() Filter { return s.filter }

// Tasks is the unfiltered working copy.
func (s *Shell) Tasks() []models.Task { return slices.Clone(s.tasks) }

// Visible is the working copy with the filter applied.
func (s *Shell) Visible() []models.Task { return s.filter.Apply(s.tasks) }

func (s *Shell) Find(id int64) (models.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}
