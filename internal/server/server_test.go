package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tareas/internal/domain/errors"
	"tareas/internal/domain/models"
	"tareas/internal/logger"
	"tareas/internal/services"
	storage "tareas/repository/inmemory"
)

const testSecret = "server-test-secret"

type MockTaskManager struct {
	mock.Mock
}

func (m *MockTaskManager) List(ctx context.Context, userID int64) ([]models.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockTaskManager) Get(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskManager) Create(ctx context.Context, userID int64, req models.CreateTaskRequest) (*models.Task, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskManager) Update(ctx context.Context, userID, taskID int64, patch models.TaskPatch) (*models.Task, error) {
	args := m.Called(ctx, userID, taskID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskManager) Delete(ctx context.Context, userID, taskID int64) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}

func newTestAPI(t *testing.T) *TaskAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := storage.NewStorage()
	auth := services.NewAuthService(store, testSecret, logger.Nop())
	tasks := services.NewTaskService(store, logger.Nop())
	api := NewTaskAPI(auth, tasks, &Config{CORSOrigins: []string{"*"}}, logger.Nop())
	require.NotNil(t, api)
	return api
}

func do(api *TaskAPI, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload *bytes.Reader
	switch b := body.(type) {
	case nil:
		payload = bytes.NewReader(nil)
	case string:
		payload = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		payload = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, api *TaskAPI, name, email string) string {
	t.Helper()
	w := do(api, http.MethodPost, "/api/auth/register", "", gin.H{"nombre": name, "email": email, "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNewTaskAPI(t *testing.T) {
	store := storage.NewStorage()
	auth := services.NewAuthService(store, testSecret, logger.Nop())
	tasks := services.NewTaskService(store, logger.Nop())

	assert.Nil(t, NewTaskAPI(nil, tasks, &Config{}, logger.Nop()))
	assert.Nil(t, NewTaskAPI(auth, nil, &Config{}, logger.Nop()))
	assert.Nil(t, NewTaskAPI(auth, tasks, nil, logger.Nop()))

	api := NewTaskAPI(auth, tasks, &Config{Addr: "127.0.0.1", Port: 3000}, nil)
	require.NotNil(t, api)
	assert.Equal(t, "127.0.0.1:3000", api.httpSrv.Addr)
}

func TestTaskLifecycleScenario(t *testing.T) {
	api := newTestAPI(t)
	token := registerUser(t, api, "Ana", "ana@x.com")

	w := do(api, http.MethodPost, "/api/tareas", token, gin.H{"titulo": "Buy milk", "prioridad": "media"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Task](t, w)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, models.PriorityMedium, created.Priority)

	w = do(api, http.MethodPut, "/api/tareas/1", token, gin.H{"estado": "completada"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Task](t, w)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	w = do(api, http.MethodDelete, "/api/tareas/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Tarea eliminada exitosamente"}`, w.Body.String())

	w = do(api, http.MethodGet, "/api/tareas/1", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Tarea no encontrada"}`, w.Body.String())

	w = do(api, http.MethodDelete, "/api/tareas/1", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name string
		body any
		want struct {
			statusCode int
			fields     []string
		}
	}{
		{
			name: "successful registration",
			body: gin.H{"nombre": "Ana", "email": "ana@x.com", "password": "secret1"},
			want: struct {
				statusCode int
				fields     []string
			}{statusCode: http.StatusCreated},
		},
		{
			name: "invalid fields",
			body: gin.H{"nombre": "A", "email": "nope", "password": "123"},
			want: struct {
				statusCode int
				fields     []string
			}{statusCode: http.StatusBadRequest, fields: []string{"nombre", "email", "password"}},
		},
		{
			name: "password longer than 72 bytes",
			body: gin.H{"nombre": "Ana", "email": "ana@x.com", "password": strings.Repeat("a", 73)},
			want: struct {
				statusCode int
				fields     []string
			}{statusCode: http.StatusBadRequest, fields: []string{"password"}},
		},
		{
			name: "empty body",
			body: "",
			want: struct {
				statusCode int
				fields     []string
			}{statusCode: http.StatusBadRequest, fields: []string{"nombre", "email", "password"}},
		},
		{
			name: "malformed json",
			body: `{"nombre":`,
			want: struct {
				statusCode int
				fields     []string
			}{statusCode: http.StatusBadRequest},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			w := do(api, http.MethodPost, "/api/auth/register", "", tt.body)
			require.Equal(t, tt.want.statusCode, w.Code, w.Body.String())

			if tt.want.statusCode == http.StatusCreated {
				resp := decode[map[string]any](t, w)
				assert.Equal(t, "Usuario registrado exitosamente", resp["message"])
				assert.NotEmpty(t, resp["token"])
				user := resp["user"].(map[string]any)
				assert.Equal(t, "Ana", user["nombre"])
				assert.NotContains(t, w.Body.String(), "password")
				return
			}

			resp := decode[struct {
				Error  string              `json:"error"`
				Errors []errors.FieldError `json:"errors"`
			}](t, w)
			assert.NotEmpty(t, resp.Error)
			got := make([]string, 0, len(resp.Errors))
			for _, f := range resp.Errors {
				got = append(got, f.Field)
			}
			assert.ElementsMatch(t, tt.want.fields, got)
		})
	}
}

func TestRegisterDuplicateEmailIsBadRequest(t *testing.T) {
	api := newTestAPI(t)
	registerUser(t, api, "Ana", "ana@x.com")

	w := do(api, http.MethodPost, "/api/auth/register", "", gin.H{"nombre": "Ana Dos", "email": "ana@x.com", "password": "secret2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"El email ya está registrado"}`, w.Body.String())
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)
	registerUser(t, api, "Ana", "ana@x.com")

	tests := []struct {
		name string
		body gin.H
		want struct {
			statusCode int
			error      string
		}
	}{
		{
			name: "valid credentials",
			body: gin.H{"email": "ana@x.com", "password": "secret1"},
			want: struct {
				statusCode int
				error      string
			}{statusCode: http.StatusOK},
		},
		{
			name: "wrong password",
			body: gin.H{"email": "ana@x.com", "password": "wrong!"},
			want: struct {
				statusCode int
				error      string
			}{statusCode: http.StatusUnauthorized, error: "Credenciales inválidas"},
		},
		{
			name: "unknown email",
			body: gin.H{"email": "bob@x.com", "password": "secret1"},
			want: struct {
				statusCode int
				error      string
			}{statusCode: http.StatusUnauthorized, error: "Credenciales inválidas"},
		},
		{
			name: "invalid email",
			body: gin.H{"email": "bob", "password": "secret1"},
			want: struct {
				statusCode int
				error      string
			}{statusCode: http.StatusBadRequest, error: "Email inválido"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(api, http.MethodPost, "/api/auth/login", "", tt.body)
			require.Equal(t, tt.want.statusCode, w.Code, w.Body.String())
			resp := decode[map[string]any](t, w)
			if tt.want.error != "" {
				assert.Equal(t, tt.want.error, resp["error"])
				return
			}
			assert.Equal(t, "Login exitoso", resp["message"])
			assert.NotEmpty(t, resp["token"])
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	api := newTestAPI(t)
	token := registerUser(t, api, "Ana", "ana@x.com")

	tests := []struct {
		name   string
		header string
		want   struct {
			statusCode int
			error      string
		}
	}{
		{
			name:   "no header",
			header: "",
			want: struct {
				statusCode int
				error      string
			}{statusCode: http.StatusUnauthorized, error: "Token de acceso requerido"},
		},
		{
			name:   "scheme without token",
			header: "Bearer",
			want: struct {
				statusCode int
				error      string
			}{statusCode: http.StatusUnauthorized, error: "Token de acceso requerido"},
		},
		{
			name:   "garbage token",
			header: "Bearer abc.def.ghi",
			want: struct {
				statusCode int
				error      string
			}{statusCode: http.StatusForbidden, error: "Token inválido o expirado"},
		},
		{
			name:   "valid token",
			header: "Bearer " + token,
			want: struct {
				statusCode int
				error      string
			}{statusCode: http.StatusOK},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/tareas", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			api.Handler().ServeHTTP(w, req)

			require.Equal(t, tt.want.statusCode, w.Code)
			if tt.want.error != "" {
				assert.JSONEq(t, `{"error":"`+tt.want.error+`"}`, w.Body.String())
				return
			}
			assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
		})
	}
}

func TestTokenFromOtherSecretIsForbidden(t *testing.T) {
	api := newTestAPI(t)
	other := services.NewAuthService(storage.NewStorage(), "another-secret", logger.Nop())
	token, _, err := other.Register(context.Background(), models.RegisterRequest{Name: "Eve", Email: "eve@x.com", Password: "secret1"})
	require.NoError(t, err)

	w := do(api, http.MethodGet, "/api/tareas", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOwnershipIsIndistinguishableFromMissing(t *testing.T) {
	api := newTestAPI(t)
	ana := registerUser(t, api, "Ana", "ana@x.com")
	bob := registerUser(t, api, "Bob", "bob@x.com")

	w := do(api, http.MethodPost, "/api/tareas", ana, gin.H{"titulo": "privada"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Task](t, w).ID
	path := "/api/tareas/" + jsonNumber(id)

	for _, tc := range []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, gin.H{"titulo": "robada"}},
		{http.MethodDelete, nil},
	} {
		foreign := do(api, tc.method, path, bob, tc.body)
		missing := do(api, tc.method, "/api/tareas/9999", bob, tc.body)
		assert.Equal(t, http.StatusNotFound, foreign.Code, tc.method)
		assert.Equal(t, missing.Code, foreign.Code, tc.method)
		assert.Equal(t, missing.Body.String(), foreign.Body.String(), tc.method)
	}

	w = do(api, http.MethodGet, "/api/tareas", bob, nil)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = do(api, http.MethodGet, path, ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "privada", decode[models.Task](t, w).Title)
}

func jsonNumber(id int64) string {
	data, _ := json.Marshal(id)
	return string(data)
}

func TestNonNumericIDIsNotFound(t *testing.T) {
	api := newTestAPI(t)
	token := registerUser(t, api, "Ana", "ana@x.com")

	for _, path := range []string{"/api/tareas/abc", "/api/tareas/0", "/api/tareas/-3", "/api/tareas/1.5"} {
		w := do(api, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	api := newTestAPI(t)
	token := registerUser(t, api, "Ana", "ana@x.com")

	tests := []struct {
		name   string
		body   any
		fields []string
	}{
		{name: "missing title", body: gin.H{"descripcion": "x"}, fields: []string{"titulo"}},
		{name: "blank title", body: gin.H{"titulo": "   "}, fields: []string{"titulo"}},
		{name: "bad priority", body: gin.H{"titulo": "x", "prioridad": "urgente"}, fields: []string{"prioridad"}},
		{name: "bad status", body: gin.H{"titulo": "x", "estado": "hecha"}, fields: []string{"estado"}},
		{name: "bad due date", body: gin.H{"titulo": "x", "fecha_vencimiento": "mañana"}, fields: []string{"fecha_vencimiento"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(api, http.MethodPost, "/api/tareas", token, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			resp := decode[struct {
				Errors []errors.FieldError `json:"errors"`
			}](t, w)
			got := make([]string, 0, len(resp.Errors))
			for _, f := range resp.Errors {
				got = append(got, f.Field)
				assert.NotEmpty(t, f.Msg)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestUpdateTask(t *testing.T) {
	api := newTestAPI(t)
	token := registerUser(t, api, "Ana", "ana@x.com")
	w := do(api, http.MethodPost, "/api/tareas", token, gin.H{
		"titulo": "Informe", "descripcion": "trimestral", "fecha_vencimiento": "2025-06-30", "prioridad": "alta",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name string
		body any
		want struct {
			statusCode int
			check      func(t *testing.T, task models.Task)
			error      string
		}
	}{
		{
			name: "explicit null clears the due date",
			body: `{"fecha_vencimiento": null}`,
			want: struct {
				statusCode int
				check      func(t *testing.T, task models.Task)
				error      string
			}{statusCode: http.StatusOK, check: func(t *testing.T, task models.Task) {
				assert.Nil(t, task.DueDate)
				require.NotNil(t, task.Description)
				assert.Equal(t, "trimestral", *task.Description)
				assert.Equal(t, models.PriorityHigh, task.Priority)
			}},
		},
		{
			name: "omitted fields are untouched",
			body: gin.H{"titulo": "Informe final"},
			want: struct {
				statusCode int
				check      func(t *testing.T, task models.Task)
				error      string
			}{statusCode: http.StatusOK, check: func(t *testing.T, task models.Task) {
				assert.Equal(t, "Informe final", task.Title)
				require.NotNil(t, task.Description)
				assert.Equal(t, "trimestral", *task.Description)
			}},
		},
		{
			name: "empty patch",
			body: gin.H{},
			want: struct {
				statusCode int
				check      func(t *testing.T, task models.Task)
				error      string
			}{statusCode: http.StatusBadRequest, error: "No hay campos para actualizar"},
		},
		{
			name: "invalid status",
			body: gin.H{"estado": "archivada"},
			want: struct {
				statusCode int
				check      func(t *testing.T, task models.Task)
				error      string
			}{statusCode: http.StatusBadRequest},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(api, http.MethodPut, "/api/tareas/1", token, tt.body)
			require.Equal(t, tt.want.statusCode, w.Code, w.Body.String())
			if tt.want.check != nil {
				tt.want.check(t, decode[models.Task](t, w))
			}
			if tt.want.error != "" {
				assert.JSONEq(t, `{"error":"`+tt.want.error+`"}`, w.Body.String())
			}
		})
	}
}

func TestListReturnsOnlyOwnTasksNewestFirst(t *testing.T) {
	api := newTestAPI(t)
	ana := registerUser(t, api, "Ana", "ana@x.com")
	bob := registerUser(t, api, "Bob", "bob@x.com")

	for _, title := range []string{"primera", "segunda", "tercera"} {
		require.Equal(t, http.StatusCreated, do(api, http.MethodPost, "/api/tareas", ana, gin.H{"titulo": title}).Code)
	}
	require.Equal(t, http.StatusCreated, do(api, http.MethodPost, "/api/tareas", bob, gin.H{"titulo": "de bob"}).Code)

	w := do(api, http.MethodGet, "/api/tareas", ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decode[[]models.Task](t, w)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"tercera", "segunda", "primera"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})
	assert.NotContains(t, w.Body.String(), "usuario_id")
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := storage.NewStorage()
	auth := services.NewAuthService(store, testSecret, logger.Nop())
	token, _, err := auth.Register(context.Background(), models.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)

	leak := errors.NewStoreError("list tasks", stderrors.New("pq: password authentication failed for user admin"))

	tests := []struct {
		name      string
		method    string
		path      string
		body      any
		mockSetup func(*MockTaskManager)
		want      string
	}{
		{
			name:   "list",
			method: http.MethodGet,
			path:   "/api/tareas",
			mockSetup: func(m *MockTaskManager) {
				m.On("List", mock.Anything, int64(1)).Return(nil, leak)
			},
			want: "Error al obtener tareas",
		},
		{
			name:   "get",
			method: http.MethodGet,
			path:   "/api/tareas/7",
			mockSetup: func(m *MockTaskManager) {
				m.On("Get", mock.Anything, int64(1), int64(7)).Return(nil, leak)
			},
			want: "Error al obtener tarea",
		},
		{
			name:   "create",
			method: http.MethodPost,
			path:   "/api/tareas",
			body:   gin.H{"titulo": "x"},
			mockSetup: func(m *MockTaskManager) {
				m.On("Create", mock.Anything, int64(1), mock.AnythingOfType("models.CreateTaskRequest")).Return(nil, leak)
			},
			want: "Error al crear tarea",
		},
		{
			name:   "update",
			method: http.MethodPut,
			path:   "/api/tareas/7",
			body:   gin.H{"titulo": "x"},
			mockSetup: func(m *MockTaskManager) {
				m.On("Update", mock.Anything, int64(1), int64(7), mock.AnythingOfType("models.TaskPatch")).Return(nil, leak)
			},
			want: "Error al actualizar tarea",
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			path:   "/api/tareas/7",
			mockSetup: func(m *MockTaskManager) {
				m.On("Delete", mock.Anything, int64(1), int64(7)).Return(leak)
			},
			want: "Error al eliminar tarea",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := &MockTaskManager{}
			tt.mockSetup(tasks)
			api := NewTaskAPI(auth, tasks, &Config{}, logger.Nop())

			w := do(api, tt.method, tt.path, token, tt.body)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, w.Body.String())
			assert.NotContains(t, w.Body.String(), "password")
			tasks.AssertExpectations(t)
		})
	}
}

func TestPanicAnswersGenericErrorForEveryEncoding(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := storage.NewStorage()
	auth := services.NewAuthService(store, testSecret, logger.Nop())
	token, _, err := auth.Register(context.Background(), models.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)

	tasks := &MockTaskManager{}
	tasks.On("List", mock.Anything, int64(1)).Run(func(mock.Arguments) { panic("nil map") })
	api := NewTaskAPI(auth, tasks, &Config{}, logger.Nop())

	for _, encoding := range []string{"", "gzip"} {
		t.Run("accept-encoding="+encoding, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/tareas", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			if encoding != "" {
				req.Header.Set("Accept-Encoding", encoding)
			}
			w := httptest.NewRecorder()
			api.Handler().ServeHTTP(w, req)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"error":"Error interno del servidor"}`, w.Body.String())
		})
	}
}

func TestLongTitleIsAccepted(t *testing.T) {
	api := newTestAPI(t)
	token := registerUser(t, api, strings.Repeat("n", 150), "ana@x.com")
	title := strings.Repeat("t", 300)

	w := do(api, http.MethodPost, "/api/tareas", token, gin.H{"titulo": title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Task](t, w)
	assert.Equal(t, title, created.Title)

	w = do(api, http.MethodPut, "/api/tareas/"+strconv.FormatInt(created.ID, 10), token, gin.H{"titulo": title + title})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, title+title, decode[models.Task](t, w).Title)
}

func TestMethodNotAllowed(t *testing.T) {
	api := newTestAPI(t)
	w := do(api, http.MethodPatch, "/api/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	registerUser(t, api, "Ana", "ana@x.com")
	do(api, http.MethodGet, "/api/tareas", "", nil)

	w := do(api, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "tareas_http_requests_total")
	assert.Contains(t, body, `route="/api/auth/register",status="201"`)
	assert.Contains(t, body, `route="/api/tareas",status="401"`)
}
