package db

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tareas/internal/domain/errors"
	"tareas/internal/domain/models"
	"tareas/internal/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	queryTimeout     = 15 * time.Second
	postgresMaxConns = 10
)

// Storage is the SQL-backed credential and task store. The same code runs
// against PostgreSQL and SQLite; only the gorm dialector and pool shape differ.
type Storage struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStorage(driver, dsn string, logg *logger.Logger) (*Storage, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLog(logg),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(postgresMaxConns)
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := &Storage{db: gdb, log: logg.With("component", "db", "driver", driver)}
	s.log.Info("database connection established")
	return s, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: empty DSN", errors.ErrConfigInvalidFormat)
	}
	switch driver {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownDriver, driver)
	}
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return errors.ErrEmailTaken
		}
		s.log.Error("create user failed", "error", err)
		return errors.NewStoreError("create user", err)
	}
	s.log.Debug("user created", "user_id", user.ID)
	return nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		s.log.Error("get user failed", "error", err)
		return nil, errors.NewStoreError("get user", err)
	}
	return &user, nil
}

func (s *Storage) ListTasks(ctx context.Context, ownerID int64) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tasks := []models.Task{}
	err := s.db.WithContext(ctx).
		Where("usuario_id = ?", ownerID).
		Order("fecha_creacion DESC").
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		s.log.Error("list tasks failed", "error", err, "user_id", ownerID)
		return nil, errors.NewStoreError("list tasks", err)
	}
	s.log.Debug("tasks listed", "user_id", ownerID, "count", len(tasks))
	return tasks, nil
}

func (s *Storage) GetTask(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var task models.Task
	err := s.db.WithContext(ctx).
		Where("id = ? AND usuario_id = ?", id, ownerID).
		First(&task).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrTaskNotFound
		}
		s.log.Error("get task failed", "error", err, "task_id", id)
		return nil, errors.NewStoreError("get task", err)
	}
	return &task, nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		s.log.Error("create task failed", "error", err, "user_id", task.OwnerID)
		return errors.NewStoreError("create task", err)
	}
	s.log.Debug("task created", "task_id", task.ID)
	return nil
}

// UpdateTask writes only the given assignments, as bound parameters, to the
// row matching both id and owner.
func (s *Storage) UpdateTask(ctx context.Context, ownerID, id int64, assignments []models.Assignment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	res := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND usuario_id = ?", id, ownerID).
		Updates(models.AssignmentMap(assignments))
	if res.Error != nil {
		s.log.Error("update task failed", "error", res.Error, "task_id", id)
		return errors.NewStoreError("update task", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.ErrTaskNotFound
	}
	s.log.Debug("task updated", "task_id", id, "columns", len(assignments))
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, ownerID, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	res := s.db.WithContext(ctx).
		Where("id = ? AND usuario_id = ?", id, ownerID).
		Delete(&models.Task{})
	if res.Error != nil {
		s.log.Error("delete task failed", "error", res.Error, "task_id", id)
		return errors.NewStoreError("delete task", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.ErrTaskNotFound
	}
	s.log.Debug("task deleted", "task_id", id)
	return nil
}

func isUniqueViolation(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if stderrors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
