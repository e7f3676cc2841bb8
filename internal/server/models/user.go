// Package models defines the records persisted by the MedTrack stores and
// the projections returned to clients.
package models

import (
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone" bson:"phone"`
	Aadhaar      string    `json:"aadhaar" bson:"aadhaar"`
	Role         Role      `json:"role" bson:"role"`
	MedTrackID   string    `json:"medTrackId" bson:"medTrackId"`
	PasswordHash string    `json:"-" bson:"password"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// UserView is the part of a user that leaves the server.
type UserView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Role       Role      `json:"role"`
	MedTrackID string    `json:"medTrackId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) View() UserView {
	return UserView{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		MedTrackID: u.MedTrackID,
		CreatedAt:  u.CreatedAt,
	}
}

// IsEmailIdentifier reports whether a login identifier is an email address
// rather than a phone number.
func IsEmailIdentifier(identifier string) bool {
	return strings.Contains(identifier, "@")
}
