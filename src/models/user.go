package models

import "time"

type UserRole string

const (
	RolePatient    UserRole = "patient"
	RoleResearcher UserRole = "researcher"
)

type User struct {
	ID int `db:"id"`

	Username    string   `db:"username"`
	DisplayName string   `db:"display_name"`
	Role        UserRole `db:"role"`

	IsAdmin          bool `db:"is_admin"`
	IsServiceAccount bool `db:"is_service_account"`

	DateJoined time.Time  `db:"date_joined"`
	LastLogin  *time.Time `db:"last_login"`

	// Non-db fields, to be filled in by fetch helpers
	Profile *ResearcherProfile
}

func (u *User) BestName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func (u *User) IsResearcher() bool {
	return u.Role == RoleResearcher
}
