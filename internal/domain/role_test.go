package domain

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"company", RoleCompany},
		{"admin", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{"  Company ", RoleCompany},
		{"superuser", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ParseRole(tc.in); got != tc.want {
			t.Errorf("ParseRole(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestRoleCapabilities(t *testing.T) {
	if RoleCompany.CanAutoApprove() || RoleCompany.CanReview() || RoleCompany.CanDeleteAny() {
		t.Error("company role must have no privileged capabilities")
	}
	if !RoleAdmin.CanAutoApprove() || !RoleAdmin.CanReview() || !RoleAdmin.CanDeleteAny() {
		t.Error("admin role must have all privileged capabilities")
	}
	if Role("superuser").Known() {
		t.Error("unknown role must not be known")
	}
	if Role("superuser").CanReview() {
		t.Error("unknown role must have no capabilities")
	}
}
