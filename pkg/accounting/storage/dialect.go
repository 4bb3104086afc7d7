package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL/MariaDB driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver (cgo)
	_ "modernc.org/sqlite"             // SQLite driver (pure Go)
)

// dialect captures what differs between the supported SQL backends.
type dialect struct {
	// name is the configured driver name and the StorageError backend label.
	name string

	// driverName is the database/sql driver registered by the imports above.
	driverName string

	// gooseDialect is passed to goose.SetDialect.
	gooseDialect string

	// numbered placeholders ($1, $2, ...) instead of ?.
	numbered bool
}

var dialects = map[string]dialect{
	"sqlite":   {name: "sqlite", driverName: "sqlite", gooseDialect: "sqlite3"},
	"sqlite3":  {name: "sqlite3", driverName: "sqlite3", gooseDialect: "sqlite3"},
	"postgres": {name: "postgres", driverName: "pgx", gooseDialect: "postgres", numbered: true},
	"mysql":    {name: "mysql", driverName: "mysql", gooseDialect: "mysql"},
}

// SupportedDrivers lists the driver names accepted by SQLConfig.Driver.
func SupportedDrivers() []string {
	return []string{"sqlite", "sqlite3", "postgres", "mysql"}
}

func lookupDialect(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported driver %q (supported: %s)",
			driver, strings.Join(SupportedDrivers(), ", "))
	}
	return d, nil
}

func (d dialect) isSQLite() bool {
	return d.driverName == "sqlite" || d.driverName == "sqlite3"
}

// dsn returns the connection string for cfg. SQLite connections always get
// foreign keys enabled so that verification records cascade with accounts.
func (d dialect) dsn(cfg *SQLConfig) (string, error) {
	if !d.isSQLite() {
		if cfg.DSN == "" {
			return "", fmt.Errorf("dsn is required for driver %q", d.name)
		}
		return cfg.DSN, nil
	}

	busyMs := cfg.BusyTimeout.Milliseconds()
	if cfg.DSN != "" {
		if strings.Contains(cfg.DSN, "foreign_keys") {
			return cfg.DSN, nil
		}
		sep := "?"
		if strings.Contains(cfg.DSN, "?") {
			sep = "&"
		}
		return cfg.DSN + sep + d.foreignKeysParam(), nil
	}

	if cfg.Path == "" {
		return "", fmt.Errorf("path or dsn is required for driver %q", d.name)
	}

	if d.driverName == "sqlite" {
		return fmt.Sprintf("file:%s?%s&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
			cfg.Path, d.foreignKeysParam(), busyMs), nil
	}
	return fmt.Sprintf("file:%s?%s&_busy_timeout=%d&_journal_mode=WAL",
		cfg.Path, d.foreignKeysParam(), busyMs), nil
}

func (d dialect) foreignKeysParam() string {
	if d.driverName == "sqlite" {
		return "_pragma=foreign_keys(1)"
	}
	return "_foreign_keys=on"
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// unixCeil converts an exclusive upper bound to whole seconds: for a stored
// second s, s < t holds exactly when s < unixCeil(t).
func unixCeil(t time.Time) int64 {
	u := t.Unix()
	if t.Nanosecond() > 0 {
		u++
	}
	return u
}

// unixFloor converts an inclusive upper bound to whole seconds.
func unixFloor(t time.Time) int64 {
	return t.Unix()
}

func nullableUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
