package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Role is the capability level of a user record.
type Role string

const (
	RoleStandard Role = "user"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a stored role value into a Role. Absent or unknown values
// collapse to RoleStandard.
func ParseRole(raw *string) Role {
	if raw == nil {
		return RoleStandard
	}
	if strings.EqualFold(strings.TrimSpace(*raw), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleStandard
}

// IsAdmin reports whether the role grants the admin capability.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is a storefront account. Email is the natural key.
type User struct {
	ID        string
	Email     string
	Role      Role
	Profile   Document
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin is a nil-safe role check.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role.IsAdmin()
}

// MarshalJSON renders the user as one flat document. The role key is present
// only for admins.
func (u User) MarshalJSON() ([]byte, error) {
	doc := u.Profile.Clone()
	doc[DocumentIDKey] = u.ID
	doc["email"] = u.Email
	if u.Role.IsAdmin() {
		doc["role"] = string(RoleAdmin)
	}
	return json.Marshal(doc)
}

// UpsertResult mirrors the outcome of an update-or-insert on the user store.
type UpsertResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}
