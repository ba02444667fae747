package models

import "time"

// User defines the account model based on the 'users' table
type User struct {
	ID          int64     `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	Password    string    `json:"-" db:"password"` // bcrypt hash, never serialized
	FirstName   string    `json:"firstName" db:"first_name"`
	LastName    string    `json:"lastName" db:"last_name"`
	RoleType    RoleType  `json:"roleType" db:"role_type"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	LastLoginAt time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	IsActive    bool      `json:"isActive" db:"is_active"`
}

// FullName returns the display name of the user.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
