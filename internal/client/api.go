package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	domainerrors "tareas/internal/domain/errors"
	"tareas/internal/domain/models"
)

var ErrConnection = errors.New("Error de conexión. Verifica que el servidor esté corriendo.")

// APIError is a 4xx/5xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Fields  []domainerrors.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		msgs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			msgs = append(msgs, f.Msg)
		}
		return strings.Join(msgs, ", ")
	}
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// SessionRejected reports whether the server refused the token.
func (e *APIError) SessionRejected() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

type APIClient struct {
	baseURL string
	http    *http.Client
}

// NewAPIClient targets baseURL, which includes the /api prefix.
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *APIClient) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &resp)
	return resp, err
}

func (c *APIClient) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &resp)
	return resp, err
}

func (c *APIClient) ListTasks(ctx context.Context, token string) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := c.do(ctx, http.MethodGet, "/tareas", token, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *APIClient) GetTask(ctx context.Context, token string, id int64) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), token, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *APIClient) CreateTask(ctx context.Context, token string, req models.CreateTaskRequest) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/tareas", token, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *APIClient) UpdateTask(ctx context.Context, token string, id int64, patch models.TaskPatch) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), token, patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *APIClient) DeleteTask(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), token, nil, nil)
}

func taskPath(id int64) string {
	return "/tareas/" + strconv.FormatInt(id, 10)
}

func (c *APIClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var failure struct {
			Error  string                    `json:"error"`
			Errors []domainerrors.FieldError `json:"errors"`
		}
		if err := json.Unmarshal(data, &failure); err != nil {
			return fmt.Errorf("%w: status %d: %v", ErrConnection, resp.StatusCode, err)
		}
		return &APIError{Status: resp.StatusCode, Message: failure.Error, Fields: failure.Errors}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}
