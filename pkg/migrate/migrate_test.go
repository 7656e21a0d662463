package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/storeratings/storeratings-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := fs.Glob(migrate.Embedded(), "*_"+suffix+".sql")
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one %s migration, found %d", suffix, len(matches))
	}
	data, err := fs.ReadFile(migrate.Embedded(), matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks ...string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := migrate.ValidateFS(migrate.Embedded()); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
}

func TestUsersMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_users"),
		"CREATE TYPE user_role AS ENUM ('system_admin', 'normal_user', 'store_owner')",
		"CONSTRAINT users_email_key UNIQUE (email)",
		"CHECK (char_length(name) BETWEEN 20 AND 60)",
		"address varchar(400)",
		"DROP TABLE IF EXISTS users",
	)
}

func TestStoresMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_stores"),
		"CONSTRAINT stores_email_key UNIQUE (email)",
		"FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE SET NULL",
		"DROP TABLE IF EXISTS stores",
	)
}

func TestRatingsMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_ratings"),
		"UNIQUE (user_id, store_id)",
		"CHECK (rating BETWEEN 1 AND 5)",
		"FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",
		"FOREIGN KEY (store_id) REFERENCES stores(id) ON DELETE CASCADE",
	)
}

func TestStatsViewUsesLeftJoin(t *testing.T) {
	assertContains(t, readMigration(t, "create_store_rating_stats_view"),
		"LEFT JOIN ratings r ON r.store_id = s.id",
		"COALESCE(AVG(r.rating), 0)",
		"COUNT(r.id) AS total_ratings",
	)
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Store Tags!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(path, "_add_store_tags.sql") {
		t.Fatalf("unexpected path %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}

func TestListOrdersEmbeddedMigrations(t *testing.T) {
	list, err := migrate.List(migrate.Embedded())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 migrations, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Version >= list[i].Version {
			t.Fatalf("migrations out of order: %v", list)
		}
	}
	if !strings.HasSuffix(list[len(list)-1].Name, "_create_store_rating_stats_view.sql") {
		t.Fatalf("expected stats view last, got %s", list[len(list)-1].Name)
	}
}

func TestPendingSkipsAppliedVersions(t *testing.T) {
	list := []migrate.Migration{
		{Version: 20250301090000, Name: "20250301090000_create_users.sql"},
		{Version: 20250301090100, Name: "20250301090100_create_stores.sql"},
		{Version: 20250301090200, Name: "20250301090200_create_ratings.sql"},
	}
	pending := migrate.Pending(list, 20250301090100)
	if len(pending) != 1 || pending[0].Version != 20250301090200 {
		t.Fatalf("unexpected pending %v", pending)
	}
	if got := migrate.Pending(list, 0); len(got) != 3 {
		t.Fatalf("expected all pending on empty schema, got %v", got)
	}
}

func TestValidateUsesEmbeddedSetForDefaultDir(t *testing.T) {
	if err := migrate.Validate(migrate.DefaultDir); err != nil {
		t.Fatalf("default dir should validate from the binary: %v", err)
	}
	if err := migrate.Validate(""); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
