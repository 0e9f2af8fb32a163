package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdemo/db/migrations"
	"github.com/Additional-Code/orderdemo/internal/config"
	"github.com/Additional-Code/orderdemo/internal/database"
)

// Module provides the migrator to Fx.
var Module = fx.Provide(New)

// Migrator wraps goose operations over the embedded migrations.
type Migrator struct {
	db     *bun.DB
	dir    string
	logger *zap.Logger
}

// New constructs a goose-backed migrator on the writer connection.
func New(cfg config.Config, conns *database.Connections, logger *zap.Logger) (*Migrator, error) {
	return NewForDB(conns.Writer, cfg.Database.Driver, logger)
}

// NewForDB constructs a migrator for an already opened database.
func NewForDB(db *bun.DB, driver string, logger *zap.Logger) (*Migrator, error) {
	dialect, dir, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{logger: logger})
	if err := goose.SetDialect(dialect); err != nil {
		return nil, err
	}

	return &Migrator{db: db, dir: dir, logger: logger}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	if err := goose.UpContext(ctx, m.db.DB, m.dir); err != nil {
		if isNoMigrationErr(err) {
			m.logger.Info("no migrations to apply")

			return nil
		}
		return err
	}

	m.logger.Info("migrations applied", zap.String("dir", m.dir))

	return nil
}

// Down rolls back migrations. Steps <=0 defaults to 1; all=true rolls everything back.
func (m *Migrator) Down(ctx context.Context, steps int, all bool) error {
	if all {
		if err := goose.DownToContext(ctx, m.db.DB, m.dir, 0); err != nil {
			if isNoMigrationErr(err) {
				m.logger.Info("no migrations to rollback")

				return nil
			}
			return err
		}
		m.logger.Info("migrations rolled back", zap.String("mode", "all"))

		return nil
	}

	if steps <= 0 {
		steps = 1
	}

	for i := 0; i < steps; i++ {
		if err := goose.DownContext(ctx, m.db.DB, m.dir); err != nil {
			if isNoMigrationErr(err) {
				m.logger.Info("no migrations to rollback")

				return nil
			}
			return err
		}
	}

	m.logger.Info("migrations rolled back", zap.Int("steps", steps))

	return nil
}

// gooseDialect maps a database driver onto the goose dialect and the
// embedded directory holding that dialect's SQL.
func gooseDialect(driver string) (string, string, error) {
	switch driver {
	case "postgres", "pg":
		return "postgres", "postgres", nil
	case "mysql":
		return "mysql", "mysql", nil
	case "sqlite", "sqlite3":
		return "sqlite3", "sqlite", nil
	default:
		return "", "", fmt.Errorf("unsupported goose dialect for driver %s", driver)
	}
}

func isNoMigrationErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, goose.ErrNoNextVersion) || errors.Is(err, goose.ErrNoMigrationFiles) || errors.Is(err, goose.ErrNoCurrentVersion) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "no migrations")
}

type gooseLogger struct {
	logger *zap.Logger
}

func (g gooseLogger) Printf(format string, args ...interface{}) {
	g.logger.Sugar().Debugf(strings.TrimSpace(format), args...)
}

func (g gooseLogger) Fatalf(format string, args ...interface{}) {
	g.logger.Sugar().Fatalf(strings.TrimSpace(format), args...)
}
