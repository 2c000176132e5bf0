package domain

import "strings"

// Role is the closed set of actor roles the workflow recognizes.
// Tokens arrive from the JWT layer; parsing is case-insensitive because
// legacy tokens carry upper-case role names.
type Role string

const (
	// RoleCompany is a non-privileged submitter: its content requires review.
	RoleCompany Role = "company"
	// RoleAdmin is a privileged submitter and the only reviewing role.
	RoleAdmin Role = "admin"
)

// capability is the per-role capability row. Who can do what lives here,
// not in string comparisons scattered through the services.
type capability struct {
	autoApprove bool // submissions publish immediately, without review
	review      bool // may approve/reject pending versions
	deleteAny   bool // may delete entities owned by others
}

var roleCapabilities = map[Role]capability{
	RoleCompany: {},
	RoleAdmin:   {autoApprove: true, review: true, deleteAny: true},
}

// ParseRole normalizes a role token. The zero Role is returned for
// unknown tokens; callers check Known.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleCapabilities[r]; ok {
		return r
	}
	return ""
}

// Known reports whether the role is one of the recognized roles.
func (r Role) Known() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// CanAutoApprove reports whether submissions by this role publish
// immediately instead of entering review.
func (r Role) CanAutoApprove() bool { return roleCapabilities[r].autoApprove }

// CanReview reports whether this role may approve or reject pending versions.
func (r Role) CanReview() bool { return roleCapabilities[r].review }

// CanDeleteAny reports whether this role may delete entities it does not own.
func (r Role) CanDeleteAny() bool { return roleCapabilities[r].deleteAny }

// Actor is the already-authenticated caller of a workflow operation.
// Authentication happens at the JWT boundary; the engine trusts these
// fields and performs only role and ownership checks.
type Actor struct {
	ID   uint64
	UUID string
	Role Role
}
