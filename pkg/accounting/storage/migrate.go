package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"

	"radsweep-hq/radsweep/pkg/accounting/storage/migrations"
)

// goose keeps its base FS, dialect and logger in package globals.
var gooseMu sync.Mutex

// gooseLogger routes goose output through slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level. goose only calls it from its own CLI paths.
func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// Migrate applies all pending schema migrations.
func (s *SQLStore) Migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := s.prepareGoose(); err != nil {
		return s.storageError("migrate", err)
	}

	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return s.storageError("migrate", err)
	}

	version, err := goose.GetDBVersionContext(ctx, s.db)
	if err != nil {
		return s.storageError("migrate", err)
	}

	s.logger.Info("schema migrated", "version", version)
	return nil
}

// SchemaVersion returns the currently applied migration version.
func (s *SQLStore) SchemaVersion(ctx context.Context) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := s.prepareGoose(); err != nil {
		return 0, s.storageError("schema_version", err)
	}

	version, err := goose.GetDBVersionContext(ctx, s.db)
	if err != nil {
		return 0, s.storageError("schema_version", err)
	}
	return version, nil
}

// prepareGoose sets goose globals. Callers must hold gooseMu.
func (s *SQLStore) prepareGoose() error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{logger: s.logger.With("subsystem", "goose")})
	return goose.SetDialect(s.dialect.gooseDialect)
}
