package domain

import "time"

// UserRole enumerates account capabilities.
type UserRole string

const (
	RoleCustomer UserRole = "CUSTOMER"
	RoleStaff    UserRole = "STAFF"
	RoleAdmin    UserRole = "ADMIN"
)

// CanBeAssigned reports whether the role may hold complaint assignments.
func (r UserRole) CanBeAssigned() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User models every account in the system. Staff and admin accounts
// additionally carry the gamification profile fields; those stay zero-valued
// for customers.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole

	// Gamification profile. TotalPoints and Badges only ever grow;
	// CustomerRating is nil until the first rating is received.
	TotalPoints        int
	ComplaintsResolved int
	CustomerRating     *float64
	Badges             []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasBadge reports whether the profile already holds the badge.
func (u *User) HasBadge(id string) bool {
	for _, b := range u.Badges {
		if b == id {
			return true
		}
	}
	return false
}
