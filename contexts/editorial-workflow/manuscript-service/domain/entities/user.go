package entities

import (
	"strings"
	"time"
)

// Role is the closed set of platform roles. Unknown strings never parse.
type Role string

const (
	RoleMotherAdmin Role = "mother_admin"
	RoleSuperAdmin  Role = "super_admin"
	RoleEditor      Role = "editor"
	RoleSubEditor   Role = "sub_editor"
	RoleReviewer    Role = "reviewer"
	RoleAuthor      Role = "author"
)

var roleRank = map[Role]int{
	RoleMotherAdmin: 5,
	RoleSuperAdmin:  4,
	RoleEditor:      3,
	RoleSubEditor:   2,
	RoleReviewer:    1,
	RoleAuthor:      1,
}

func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := roleRank[role]; !ok {
		return "", false
	}
	return role, true
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Rank orders roles for the admin chain. Reviewer and author share the
// lowest rank and are peers.
func (r Role) Rank() int {
	return roleRank[r]
}

// Outranks reports whether r is strictly above other in the hierarchy.
func (r Role) Outranks(other Role) bool {
	return r.Rank() > other.Rank()
}

func (r Role) IsAdmin() bool {
	return r == RoleMotherAdmin || r == RoleSuperAdmin
}

func (r Role) IsEditorial() bool {
	return r == RoleEditor || r == RoleSubEditor
}

// Principal is the resolved caller identity handed to every command.
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) Valid() bool {
	return strings.TrimSpace(p.UserID) != "" && p.Role.Valid()
}

type User struct {
	UserID    string
	Email     string
	FullName  string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) Principal() Principal {
	return Principal{UserID: u.UserID, Role: u.Role}
}

// Editorship binds an editor or sub-editor to a journal.
type Editorship struct {
	UserID    string
	JournalID string
	BoundBy   string
	CreatedAt time.Time
}

type RoleChangeAudit struct {
	AuditID      string
	UserID       string
	PreviousRole Role
	NewRole      Role
	ChangedBy    string
	ChangedAt    time.Time
}
