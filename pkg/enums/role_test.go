package enums

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"system_admin":  RoleSystemAdmin,
		" Normal_User ": RoleNormalUser,
		"store_owner":   RoleStoreOwner,
	}
	for input, want := range cases {
		got, err := ParseRole(input)
		if err != nil {
			t.Fatalf("ParseRole(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseRole(%q) = %q, want %q", input, got, want)
		}
	}

	if _, err := ParseRole("admin"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestRoleSetAllows(t *testing.T) {
	set := NewRoleSet(RoleSystemAdmin, Role("bogus"))
	if !set.Allows(RoleSystemAdmin) {
		t.Fatal("expected admin to be allowed")
	}
	if set.Allows(RoleNormalUser) {
		t.Fatal("normal user must not be allowed")
	}
	if set.Allows(Role("bogus")) {
		t.Fatal("unknown roles are never members")
	}
}

func TestParseSortOrder(t *testing.T) {
	if got := ParseSortOrder("DESC", SortAsc); got != SortDesc {
		t.Fatalf("expected desc, got %s", got)
	}
	if got := ParseSortOrder("sideways", SortAsc); got != SortAsc {
		t.Fatalf("expected fallback asc, got %s", got)
	}
	if SortDesc.SQL() != "DESC" || SortAsc.SQL() != "ASC" {
		t.Fatal("unexpected SQL keywords")
	}
}
