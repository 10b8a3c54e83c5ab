package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tareas/internal/domain/errors"
	"tareas/internal/domain/models"
	"tareas/internal/logger"
)

type Authenticator interface {
	Register(ctx context.Context, req models.RegisterRequest) (string, models.PublicUser, error)
	Login(ctx context.Context, req models.LoginRequest) (string, models.PublicUser, error)
	Verify(token string) (int64, error)
}

type TaskManager interface {
	List(ctx context.Context, userID int64) ([]models.Task, error)
	Get(ctx context.Context, userID, taskID int64) (*models.Task, error)
	Create(ctx context.Context, userID int64, req models.CreateTaskRequest) (*models.Task, error)
	Update(ctx context.Context, userID, taskID int64, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID int64) error
}

type TaskAPI struct {
	httpSrv *http.Server
	auth    Authenticator
	tasks   TaskManager
	metrics *Metrics
	log     *logger.Logger
}

func NewTaskAPI(auth Authenticator, tasks TaskManager, cfg *Config, log *logger.Logger) *TaskAPI {
	if auth == nil || tasks == nil || cfg == nil {
		return nil
	}
	if log == nil {
		log = logger.Nop()
	}

	api := &TaskAPI{
		httpSrv: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port),
			ReadHeaderTimeout: 10 * time.Second,
		},
		auth:    auth,
		tasks:   tasks,
		metrics: NewMetrics(),
		log:     log.With("component", "http"),
	}
	api.configRoutes(cfg)

	return api
}

// Handler exposes the router, mainly for httptest servers.
func (api *TaskAPI) Handler() http.Handler {
	return api.httpSrv.Handler
}

func (api *TaskAPI) Start() error {
	if api.httpSrv == nil {
		return errors.ErrInternalServer
	}
	api.log.Info("listening", "addr", api.httpSrv.Addr)
	return api.httpSrv.ListenAndServe()
}

func (api *TaskAPI) Shutdown(ctx context.Context) error {
	return api.httpSrv.Shutdown(ctx)
}

func (api *TaskAPI) configRoutes(cfg *Config) {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(
		Recovery(api.log),
		RequestLogger(api.log),
		api.metrics.Middleware(),
		CORS(cfg.CORSOrigins),
		GzipRequestDecompress(),
		GzipResponseCompress(),
	)

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Ruta no encontrada"})
	})
	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Método HTTP no permitido"})
	})

	router.GET("/metrics", api.metrics.Handler(api.log))

	apiGroup := router.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		auth.POST("/register", api.register)
		auth.POST("/login", api.login)

		tasks := apiGroup.Group("/tareas")
		tasks.Use(api.authRequired())
		tasks.GET("", api.listTasks)
		tasks.GET("/:id", api.getTask)
		tasks.POST("", api.createTask)
		tasks.PUT("/:id", api.updateTask)
		tasks.DELETE("/:id", api.deleteTask)
	}

	api.httpSrv.Handler = router
}
