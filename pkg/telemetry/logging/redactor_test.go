package logging

import (
	"log/slog"
	"testing"
)

func TestRedactDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{
			name: "postgres url",
			dsn:  "postgres://radius:hunter2@db:5432/radius?sslmode=disable",
			want: "postgres://radius:xxxxx@db:5432/radius?sslmode=disable",
		},
		{
			name: "url without password",
			dsn:  "postgres://radius@db/radius",
			want: "postgres://radius@db/radius",
		},
		{
			name: "mysql",
			dsn:  "radius:hunter2@tcp(db:3306)/radius?parseTime=true",
			want: "radius:xxxxx@tcp(db:3306)/radius?parseTime=true",
		},
		{
			name: "keyword value",
			dsn:  "host=db user=radius password=hunter2 dbname=radius",
			want: "host=db user=radius password=xxxxx dbname=radius",
		},
		{
			name: "sqlite file",
			dsn:  "file:data/radius.db?_busy_timeout=5000",
			want: "file:data/radius.db?_busy_timeout=5000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactDSN(tt.dsn); got != tt.want {
				t.Errorf("RedactDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedactSubscriber(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"alice@example.net", "a***@example.net"},
		{"bob", "b***"},
		{"@realm", "***@realm"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := RedactSubscriber(tt.in); got != tt.want {
			t.Errorf("RedactSubscriber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedactor_ReplaceAttr(t *testing.T) {
	r := NewRedactor()

	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"password", slog.String("db_password", "hunter2"), "[REDACTED]"},
		{"shared secret", slog.String("shared_secret", "testing123"), "[REDACTED]"},
		{"username", slog.String("username", "alice@example.net"), "a***@example.net"},
		{"dsn", slog.String("dsn", "radius:pw@tcp(db)/radius"), "radius:xxxxx@tcp(db)/radius"},
		{"plain", slog.String("job", "delete_old_users"), "delete_old_users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ReplaceAttr(nil, tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("ReplaceAttr() = %q, want %q", got.Value.String(), tt.want)
			}
		})
	}

	// Non-string values pass through.
	n := r.ReplaceAttr(nil, slog.Int("password", 4))
	if n.Value.Int64() != 4 {
		t.Errorf("int attr changed: %v", n.Value)
	}
}
