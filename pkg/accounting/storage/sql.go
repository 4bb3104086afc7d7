package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"radsweep-hq/radsweep/pkg/accounting"
)

// SQLConfig contains configuration for the SQL storage backend.
type SQLConfig struct {
	// Driver selects the backend: "sqlite" (pure Go), "sqlite3" (cgo),
	// "postgres" or "mysql".
	// Default: "sqlite"
	Driver string

	// DSN is the driver-specific connection string. Required for postgres
	// and mysql; for SQLite it overrides Path.
	DSN string

	// Path is the SQLite database file path, used when DSN is empty.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// Migrate applies pending schema migrations when the store is opened.
	Migrate bool
}

// DefaultSQLConfig returns the default SQL configuration.
func DefaultSQLConfig() *SQLConfig {
	return &SQLConfig{
		Driver:       "sqlite",
		Path:         "data/radius.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLStore implements accounting.Store on top of database/sql.
// Every mutating call is issued as one UPDATE or DELETE whose WHERE clause
// is the whole filter, so the database decides membership and applies the
// change atomically.
type SQLStore struct {
	db      *sql.DB
	config  *SQLConfig
	dialect dialect
	logger  *slog.Logger
}

// NewSQLStore opens a database connection and verifies it is reachable.
// If config.Migrate is set, pending migrations are applied.
func NewSQLStore(ctx context.Context, config *SQLConfig) (*SQLStore, error) {
	if config == nil {
		config = DefaultSQLConfig()
	}
	if config.Driver == "" {
		config.Driver = "sqlite"
	}

	d, err := lookupDialect(config.Driver)
	if err != nil {
		return nil, accounting.NewStorageError(config.Driver, "open", err)
	}

	dsn, err := d.dsn(config)
	if err != nil {
		return nil, accounting.NewStorageError(d.name, "open", err)
	}

	logger := slog.Default().With("component", "storage.sql", "driver", d.name)

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, accounting.NewStorageError(d.name, "open", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	s := &SQLStore{
		db:      db,
		config:  config,
		dialect: d,
		logger:  logger,
	}

	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if config.Migrate {
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	logger.Info("SQL storage initialized",
		"max_open_conns", config.MaxOpenConns,
		"migrate", config.Migrate,
	)

	return s, nil
}

// Driver returns the configured driver name.
func (s *SQLStore) Driver() string {
	return s.dialect.name
}

// DB returns the underlying connection pool.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) storageError(operation string, err error) error {
	return accounting.NewStorageError(s.dialect.name, operation, err)
}

// count runs SELECT COUNT(*) against table with the given WHERE clause.
func (s *SQLStore) count(ctx context.Context, q dbtx, table, where string, args []any) (int64, error) {
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	var n int64
	if err := q.QueryRowContext(ctx, s.dialect.rebind(query), args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// exec runs a mutating statement and returns the affected row count.
func (s *SQLStore) exec(ctx context.Context, q dbtx, query string, args []any) (int64, error) {
	result, err := q.ExecContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountAccounts returns the number of accounts matching the filter.
func (s *SQLStore) CountAccounts(ctx context.Context, filter accounting.AccountFilter) (int64, error) {
	where, args := accountWhere(filter)
	n, err := s.count(ctx, s.db, "accounts", where, args)
	if err != nil {
		return 0, s.storageError("count_accounts", err)
	}
	return n, nil
}

// DeactivateAccounts clears the active flag on matching active accounts.
func (s *SQLStore) DeactivateAccounts(ctx context.Context, filter accounting.AccountFilter) (int64, error) {
	if filter.IsZero() {
		return 0, accounting.ErrUnboundedFilter
	}

	where, args := accountWhere(filter)
	query := "UPDATE accounts SET is_active = ? WHERE is_active = ? AND " + where
	n, err := s.exec(ctx, s.db, query, append([]any{false, true}, args...))
	if err != nil {
		return 0, s.storageError("deactivate_accounts", err)
	}
	return n, nil
}

// DeleteAccounts removes matching accounts. registered_users rows follow
// through ON DELETE CASCADE.
func (s *SQLStore) DeleteAccounts(ctx context.Context, filter accounting.AccountFilter) (int64, error) {
	if filter.IsZero() {
		return 0, accounting.ErrUnboundedFilter
	}

	where, args := accountWhere(filter)
	n, err := s.exec(ctx, s.db, "DELETE FROM accounts WHERE "+where, args)
	if err != nil {
		return 0, s.storageError("delete_accounts", err)
	}
	return n, nil
}

// CountSessions returns the number of sessions matching the filter.
func (s *SQLStore) CountSessions(ctx context.Context, filter accounting.SessionFilter) (int64, error) {
	where, args := sessionWhere(filter)
	n, err := s.count(ctx, s.db, "accounting_sessions", where, args)
	if err != nil {
		return 0, s.storageError("count_sessions", err)
	}
	return n, nil
}

// closeSessionsQuery sets every column from the row's pre-update values;
// MySQL evaluates SET left to right, so update_time is assigned last.
const closeSessionsQuery = `UPDATE accounting_sessions
SET stop_time = COALESCE(update_time, start_time),
    session_time = COALESCE(update_time, start_time) - start_time,
    update_time = COALESCE(update_time, start_time)
WHERE `

// CloseSessions counts the corrupt sessions among the matches and closes the
// rest with a single UPDATE, both inside one transaction.
func (s *SQLStore) CloseSessions(ctx context.Context, filter accounting.SessionFilter) (accounting.CloseResult, error) {
	var result accounting.CloseResult
	if filter.InactiveBefore == nil && filter.StoppedBefore == nil {
		return result, accounting.ErrUnboundedFilter
	}

	filter.State = accounting.SessionOpen

	err := withTx(ctx, s.db, func(ctx context.Context, tx dbtx) error {
		corrupt := filter
		corrupt.Validity = accounting.ValidityCorrupt
		where, args := sessionWhere(corrupt)
		skipped, err := s.count(ctx, tx, "accounting_sessions", where, args)
		if err != nil {
			return err
		}

		consistent := filter
		consistent.Validity = accounting.ValidityConsistent
		where, args = sessionWhere(consistent)
		closed, err := s.exec(ctx, tx, closeSessionsQuery+where, args)
		if err != nil {
			return err
		}

		result.Closed = closed
		result.Skipped = skipped
		return nil
	})
	if err != nil {
		return accounting.CloseResult{}, s.storageError("close_sessions", err)
	}
	return result, nil
}

// DeleteSessions removes matching sessions.
func (s *SQLStore) DeleteSessions(ctx context.Context, filter accounting.SessionFilter) (int64, error) {
	if filter.IsZero() {
		return 0, accounting.ErrUnboundedFilter
	}

	where, args := sessionWhere(filter)
	n, err := s.exec(ctx, s.db, "DELETE FROM accounting_sessions WHERE "+where, args)
	if err != nil {
		return 0, s.storageError("delete_sessions", err)
	}
	return n, nil
}

// CountAuthAttempts returns the number of attempts matching the filter.
func (s *SQLStore) CountAuthAttempts(ctx context.Context, filter accounting.AuthAttemptFilter) (int64, error) {
	where, args := attemptWhere(filter)
	n, err := s.count(ctx, s.db, "auth_attempts", where, args)
	if err != nil {
		return 0, s.storageError("count_auth_attempts", err)
	}
	return n, nil
}

// DeleteAuthAttempts removes matching attempts.
func (s *SQLStore) DeleteAuthAttempts(ctx context.Context, filter accounting.AuthAttemptFilter) (int64, error) {
	if filter.IsZero() {
		return 0, accounting.ErrUnboundedFilter
	}

	where, args := attemptWhere(filter)
	n, err := s.exec(ctx, s.db, "DELETE FROM auth_attempts WHERE "+where, args)
	if err != nil {
		return 0, s.storageError("delete_auth_attempts", err)
	}
	return n, nil
}

// Ping checks that the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return s.storageError("ping", err)
	}
	return nil
}

// Close releases resources held by the storage backend.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return s.storageError("close", err)
	}

	s.logger.Info("SQL storage closed")
	return nil
}

// accountWhere builds the WHERE clause (without the keyword) for an
// account filter.
func accountWhere(filter accounting.AccountFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.CreatedBefore != nil {
		conditions = append(conditions, "created_at < ?")
		args = append(args, unixCeil(*filter.CreatedBefore))
	}

	if filter.Active != nil {
		conditions = append(conditions, "is_active = ?")
		args = append(args, *filter.Active)
	}

	if filter.Verification == accounting.VerificationPending {
		sub := "EXISTS (SELECT 1 FROM registered_users r WHERE r.account_id = accounts.id AND r.is_verified = ?"
		args = append(args, false)
		if len(filter.ExcludeMethods) > 0 {
			placeholders := make([]string, len(filter.ExcludeMethods))
			for i, m := range filter.ExcludeMethods {
				placeholders[i] = "?"
				args = append(args, string(m))
			}
			sub += " AND r.method NOT IN (" + strings.Join(placeholders, ", ") + ")"
		}
		conditions = append(conditions, sub+")")
	}

	if filter.ExpiredBy != nil {
		conditions = append(conditions,
			"batch_id IN (SELECT b.id FROM import_batches b WHERE b.expires_at IS NOT NULL AND b.expires_at <= ?)")
		args = append(args, unixFloor(*filter.ExpiredBy))
	}

	if filter.ExpiredBefore != nil {
		conditions = append(conditions,
			"batch_id IN (SELECT b.id FROM import_batches b WHERE b.expires_at IS NOT NULL AND b.expires_at < ?)")
		args = append(args, unixCeil(*filter.ExpiredBefore))
	}

	return strings.Join(conditions, " AND "), args
}

// sessionWhere builds the WHERE clause (without the keyword) for a session
// filter.
func sessionWhere(filter accounting.SessionFilter) (string, []any) {
	var conditions []string
	var args []any

	switch filter.State {
	case accounting.SessionOpen:
		conditions = append(conditions, "stop_time IS NULL")
	case accounting.SessionClosed:
		conditions = append(conditions, "stop_time IS NOT NULL")
	}

	switch filter.Validity {
	case accounting.ValidityConsistent:
		conditions = append(conditions,
			"start_time IS NOT NULL AND (update_time IS NULL OR update_time >= start_time)")
	case accounting.ValidityCorrupt:
		conditions = append(conditions,
			"(start_time IS NULL OR (update_time IS NOT NULL AND update_time < start_time))")
	}

	if filter.InactiveBefore != nil {
		conditions = append(conditions, "COALESCE(update_time, start_time) < ?")
		args = append(args, unixCeil(*filter.InactiveBefore))
	}

	if filter.StoppedBefore != nil {
		conditions = append(conditions, "stop_time IS NOT NULL AND stop_time < ?")
		args = append(args, unixCeil(*filter.StoppedBefore))
	}

	return strings.Join(conditions, " AND "), args
}

// attemptWhere builds the WHERE clause (without the keyword) for an
// auth attempt filter.
func attemptWhere(filter accounting.AuthAttemptFilter) (string, []any) {
	if filter.Before == nil {
		return "", nil
	}
	return "attempted_at < ?", []any{unixCeil(*filter.Before)}
}

// InsertBatch stores an import batch.
func (s *SQLStore) InsertBatch(ctx context.Context, batch *accounting.ImportBatch) error {
	_, err := s.exec(ctx, s.db,
		"INSERT INTO import_batches (id, name, expires_at) VALUES (?, ?, ?)",
		[]any{batch.ID, batch.Name, nullableUnix(batch.ExpiresAt)})
	if err != nil {
		return s.storageError("insert_batch", err)
	}
	return nil
}

// InsertAccount stores an account.
func (s *SQLStore) InsertAccount(ctx context.Context, account *accounting.Account) error {
	_, err := s.exec(ctx, s.db,
		"INSERT INTO accounts (id, username, created_at, is_active, batch_id) VALUES (?, ?, ?, ?, ?)",
		[]any{account.ID, account.Username, account.CreatedAt.Unix(), account.IsActive, nullableString(account.BatchID)})
	if err != nil {
		return s.storageError("insert_account", err)
	}
	return nil
}

// InsertVerification stores a verification record.
func (s *SQLStore) InsertVerification(ctx context.Context, record *accounting.VerificationRecord) error {
	_, err := s.exec(ctx, s.db,
		"INSERT INTO registered_users (account_id, method, is_verified) VALUES (?, ?, ?)",
		[]any{record.AccountID, string(record.Method), record.IsVerified})
	if err != nil {
		return s.storageError("insert_verification", err)
	}
	return nil
}

// InsertSession stores an accounting session.
func (s *SQLStore) InsertSession(ctx context.Context, session *accounting.Session) error {
	var sessionTime any
	if session.SessionTime != nil {
		sessionTime = *session.SessionTime
	}

	_, err := s.exec(ctx, s.db,
		`INSERT INTO accounting_sessions (unique_id, username, start_time, stop_time, update_time, session_time)
VALUES (?, ?, ?, ?, ?, ?)`,
		[]any{
			session.UniqueID, session.Username,
			nullableUnix(session.StartTime), nullableUnix(session.StopTime), nullableUnix(session.UpdateTime),
			sessionTime,
		})
	if err != nil {
		return s.storageError("insert_session", err)
	}
	return nil
}

// InsertAuthAttempt stores an authentication attempt.
func (s *SQLStore) InsertAuthAttempt(ctx context.Context, attempt *accounting.AuthAttempt) error {
	_, err := s.exec(ctx, s.db,
		"INSERT INTO auth_attempts (id, username, reply, attempted_at) VALUES (?, ?, ?, ?)",
		[]any{attempt.ID, attempt.Username, attempt.Reply, attempt.AttemptedAt.Unix()})
	if err != nil {
		return s.storageError("insert_auth_attempt", err)
	}
	return nil
}

// GetAccount returns the account with the given ID.
func (s *SQLStore) GetAccount(ctx context.Context, id string) (*accounting.Account, error) {
	var account accounting.Account
	var createdAt int64
	var batchID sql.NullString

	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind("SELECT id, username, created_at, is_active, batch_id FROM accounts WHERE id = ?"), id,
	).Scan(&account.ID, &account.Username, &createdAt, &account.IsActive, &batchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, accounting.ErrNotFound
	}
	if err != nil {
		return nil, s.storageError("get_account", err)
	}

	account.CreatedAt = time.Unix(createdAt, 0)
	account.BatchID = batchID.String
	return &account, nil
}

// GetVerification returns the verification record for an account.
func (s *SQLStore) GetVerification(ctx context.Context, accountID string) (*accounting.VerificationRecord, error) {
	var record accounting.VerificationRecord
	var method string

	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind("SELECT account_id, method, is_verified FROM registered_users WHERE account_id = ?"), accountID,
	).Scan(&record.AccountID, &method, &record.IsVerified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, accounting.ErrNotFound
	}
	if err != nil {
		return nil, s.storageError("get_verification", err)
	}

	record.Method = accounting.Method(method)
	return &record, nil
}

// GetSession returns the session with the given unique ID.
func (s *SQLStore) GetSession(ctx context.Context, uniqueID string) (*accounting.Session, error) {
	var session accounting.Session
	var start, stop, update, elapsed sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT unique_id, username, start_time, stop_time, update_time, session_time
FROM accounting_sessions WHERE unique_id = ?`), uniqueID,
	).Scan(&session.UniqueID, &session.Username, &start, &stop, &update, &elapsed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, accounting.ErrNotFound
	}
	if err != nil {
		return nil, s.storageError("get_session", err)
	}

	session.StartTime = timeFromNull(start)
	session.StopTime = timeFromNull(stop)
	session.UpdateTime = timeFromNull(update)
	if elapsed.Valid {
		v := elapsed.Int64
		session.SessionTime = &v
	}
	return &session, nil
}

func timeFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}

// String describes the store for logs.
func (s *SQLStore) String() string {
	return fmt.Sprintf("sql(%s)", s.dialect.name)
}
