package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"
)

// Migration is one versioned SQL file.
type Migration struct {
	Version int64
	Name    string
}

// Report compares the schema version recorded by goose with a migration set.
type Report struct {
	Current int64
	Latest  int64
	Pending []Migration
}

// List returns the migrations in fsys ordered by version.
func List(fsys fs.FS) ([]Migration, error) {
	if err := ValidateFS(fsys); err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(e.Name())
		version, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse version of %q: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: version, Name: e.Name()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Pending returns the migrations newer than current.
func Pending(migrations []Migration, current int64) []Migration {
	var out []Migration
	for _, m := range migrations {
		if m.Version > current {
			out = append(out, m)
		}
	}
	return out
}

// Inspect reads the applied version from db and lists what dir would still apply.
func Inspect(ctx context.Context, db *sql.DB, dir string) (Report, error) {
	if db == nil {
		return Report{}, fmt.Errorf("db is required")
	}
	migrations, err := List(sourceFS(dir))
	if err != nil {
		return Report{}, err
	}
	if _, err := prepare(dir); err != nil {
		return Report{}, err
	}
	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return Report{}, fmt.Errorf("get db version: %w", err)
	}
	report := Report{Current: current, Pending: Pending(migrations, current)}
	if n := len(migrations); n > 0 {
		report.Latest = migrations[n-1].Version
	}
	return report, nil
}

// Validate checks dir, reading the compiled-in set for DefaultDir.
func Validate(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(sourceFS(dir))
}
