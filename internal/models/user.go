package models

import "time"

type Role string

const (
	RoleBuyer        Role = "buyer"
	RoleSeller       Role = "seller"
	RoleAgent        Role = "agent"
	RoleHotelManager Role = "hotel_manager"
	RoleAdmin        Role = "admin"
)

// Roles lists every role a user account may carry.
var Roles = []Role{RoleBuyer, RoleSeller, RoleAgent, RoleHotelManager, RoleAdmin}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type User struct {
	ID           int64     `json:"id" yaml:"id"`
	Email        string    `json:"email" yaml:"email"`
	FirstName    string    `json:"first_name" yaml:"first_name"`
	LastName     string    `json:"last_name" yaml:"last_name"`
	Phone        string    `json:"phone,omitempty" yaml:"phone"`
	Role         Role      `json:"role" yaml:"role"`
	PasswordHash string    `json:"-" yaml:"-"`
	IsActive     bool      `json:"is_active" yaml:"is_active"`
	DateJoined   time.Time `json:"date_joined" yaml:"-"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage reports whether the actor may mutate a resource owned by ownerID.
func (a Actor) CanManage(ownerID int64) bool {
	return a.IsAdmin() || a.UserID == ownerID
}
