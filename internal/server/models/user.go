// Package models holds the server-side data model.
package models

import "time"

// User is a registered account. PasswordHash never leaves the repository
// and hasher boundary; it is excluded from JSON.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string `json:"-"`
	Avatar       Avatar `json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Avatar is the stored reference to a user's normalized avatar. Data is
// set only for inline storage; Key names the side-stored object otherwise.
type Avatar struct {
	Data        []byte
	ContentType string
	Key         string
}

// Present reports whether the user has uploaded an avatar.
func (a Avatar) Present() bool {
	return a.ContentType != ""
}

// PublicUser is the projection of User that is safe to return to clients.
type PublicUser struct {
	ID        string    `json:"id"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public returns the client-safe projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		UpdatedAt: u.UpdatedAt,
	}
}
