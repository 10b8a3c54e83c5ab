package db

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"tareas/internal/domain/errors"
)

// Migration applies every pending up migration found under
// migratePath/<driver>. Postgres DSNs must be in URL form.
func Migration(driver, dsn, migratePath string) error {
	if strings.TrimSpace(dsn) == "" {
		return fmt.Errorf("%w: empty DSN", errors.ErrConfigInvalidFormat)
	}
	if strings.TrimSpace(migratePath) == "" {
		return fmt.Errorf("%w: empty migrations path", errors.ErrConfigInvalidFormat)
	}

	dir := filepath.Join(migratePath, driver)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("migrations dir: %w", err)
	}

	dbURL, err := migrateURL(driver, dsn)
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+filepath.ToSlash(dir), dbURL)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func migrateURL(driver, dsn string) (string, error) {
	switch driver {
	case DriverPostgres:
		for _, scheme := range []string{"postgres://", "postgresql://"} {
			if strings.HasPrefix(dsn, scheme) {
				return "pgx5://" + strings.TrimPrefix(dsn, scheme), nil
			}
		}
		return "", fmt.Errorf("%w: postgres DSN must be a URL", errors.ErrConfigInvalidFormat)
	case DriverSQLite:
		return "sqlite3://" + strings.TrimPrefix(dsn, "file:"), nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownDriver, driver)
	}
}
