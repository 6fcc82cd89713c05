package models

import "time"

// RoleUser is the default role assigned at registration.
const RoleUser = "user"

// User represents an account that owns scheduled posts. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:32;default:'user'" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Posts        []Post    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// UserDto is the profile projection returned by auth endpoints and /users/me.
type UserDto struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ToDto projects the user onto its public profile shape.
func (u *User) ToDto() UserDto {
	return UserDto{ID: u.ID, Username: u.Username, Email: u.Email}
}
