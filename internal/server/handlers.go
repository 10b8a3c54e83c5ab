package server

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tareas/internal/domain/errors"
	"tareas/internal/domain/models"
)

const (
	msgRegistered  = "Usuario registrado exitosamente"
	msgLoggedIn    = "Login exitoso"
	msgTaskDeleted = "Tarea eliminada exitosamente"
)

// Generic 500 bodies, one per operation. The underlying error is only logged.
const (
	opRegister = "Error al registrar usuario"
	opLogin    = "Error al iniciar sesión"
	opList     = "Error al obtener tareas"
	opGet      = "Error al obtener tarea"
	opCreate   = "Error al crear tarea"
	opUpdate   = "Error al actualizar tarea"
	opDelete   = "Error al eliminar tarea"
)

func (api *TaskAPI) register(ctx *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(ctx, &req) {
		return
	}
	token, user, err := api.auth.Register(ctx.Request.Context(), req)
	if err != nil {
		api.fail(ctx, opRegister, err)
		return
	}
	ctx.JSON(http.StatusCreated, models.AuthResponse{Message: msgRegistered, Token: token, User: user})
}

func (api *TaskAPI) login(ctx *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}
	token, user, err := api.auth.Login(ctx.Request.Context(), req)
	if err != nil {
		api.fail(ctx, opLogin, err)
		return
	}
	ctx.JSON(http.StatusOK, models.AuthResponse{Message: msgLoggedIn, Token: token, User: user})
}

// authRequired verifies the bearer token and stores the caller's id in the
// context. A missing token is 401, a bad or expired one 403.
func (api *TaskAPI) authRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, err := api.auth.Verify(bearerToken(ctx.GetHeader("Authorization")))
		if err != nil {
			status := http.StatusForbidden
			if stderrors.Is(err, errors.ErrTokenMissing) {
				status = http.StatusUnauthorized
			}
			ctx.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}
		ctx.Set(ctxUserID, userID)
		ctx.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (api *TaskAPI) listTasks(ctx *gin.Context) {
	tasks, err := api.tasks.List(ctx.Request.Context(), ctx.GetInt64(ctxUserID))
	if err != nil {
		api.fail(ctx, opList, err)
		return
	}
	ctx.JSON(http.StatusOK, tasks)
}

func (api *TaskAPI) getTask(ctx *gin.Context) {
	id, ok := taskID(ctx)
	if !ok {
		return
	}
	task, err := api.tasks.Get(ctx.Request.Context(), ctx.GetInt64(ctxUserID), id)
	if err != nil {
		api.fail(ctx, opGet, err)
		return
	}
	ctx.JSON(http.StatusOK, task)
}

func (api *TaskAPI) createTask(ctx *gin.Context) {
	var req models.CreateTaskRequest
	if !bindJSON(ctx, &req) {
		return
	}
	task, err := api.tasks.Create(ctx.Request.Context(), ctx.GetInt64(ctxUserID), req)
	if err != nil {
		api.fail(ctx, opCreate, err)
		return
	}
	ctx.JSON(http.StatusCreated, task)
}

func (api *TaskAPI) updateTask(ctx *gin.Context) {
	id, ok := taskID(ctx)
	if !ok {
		return
	}
	var patch models.TaskPatch
	if !bindJSON(ctx, &patch) {
		return
	}
	task, err := api.tasks.Update(ctx.Request.Context(), ctx.GetInt64(ctxUserID), id, patch)
	if err != nil {
		api.fail(ctx, opUpdate, err)
		return
	}
	ctx.JSON(http.StatusOK, task)
}

func (api *TaskAPI) deleteTask(ctx *gin.Context) {
	id, ok := taskID(ctx)
	if !ok {
		return
	}
	if err := api.tasks.Delete(ctx.Request.Context(), ctx.GetInt64(ctxUserID), id); err != nil {
		api.fail(ctx, opDelete, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": msgTaskDeleted})
}

// taskID parses the :id path parameter. Anything that is not a positive
// integer cannot name a task and is answered like an unknown id.
func taskID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
		return 0, false
	}
	return id, true
}

// bindJSON decodes the body into dst. An empty body decodes as {} so that
// field validation reports what is missing.
func bindJSON(ctx *gin.Context, dst any) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil && !stderrors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return false
	}
	return true
}

func (api *TaskAPI) fail(ctx *gin.Context, op string, err error) {
	var verr *errors.ValidationError
	switch {
	case stderrors.As(err, &verr):
		body := gin.H{"error": verr.Error()}
		if fields := namedFields(verr.Fields); len(fields) > 0 {
			body["errors"] = fields
		}
		ctx.JSON(http.StatusBadRequest, body)
	case stderrors.Is(err, errors.ErrConflict):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case stderrors.Is(err, errors.ErrTokenMissing), stderrors.Is(err, errors.ErrInvalidCredentials):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case stderrors.Is(err, errors.ErrUnauthorized):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case stderrors.Is(err, errors.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = ctx.Error(err)
		api.log.Error(op, "error", err, "route", ctx.FullPath())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": op})
	}
}

func namedFields(fields []errors.FieldError) []errors.FieldError {
	named := make([]errors.FieldError, 0, len(fields))
	for _, f := range fields {
		if f.Field != "" {
			named = append(named, f)
		}
	}
	return named
}
