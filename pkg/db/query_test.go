package db

import "testing"

func TestLikePatternEscapesWildcards(t *testing.T) {
	if got := LikePattern("  Ci%ty_ "); got != `%ci\%ty\_%` {
		t.Fatalf("unexpected pattern %q", got)
	}
}

func TestContainsClause(t *testing.T) {
	clause, args := ContainsClause("Market", "stores.name", "stores.address")
	want := `(LOWER(stores.name) LIKE ? ESCAPE '\' OR LOWER(stores.address) LIKE ? ESCAPE '\')`
	if clause != want {
		t.Fatalf("unexpected clause %q", clause)
	}
	if len(args) != 2 || args[0] != "%market%" {
		t.Fatalf("unexpected args %v", args)
	}
}
