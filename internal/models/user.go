package models

import "time"

// Provider values for User.Provider.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User is the persisted identity record. GoogleID is set only for
// federated users and is unique when present; PasswordHash is set only
// for local-credential users and never serialized to JSON.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	GoogleID     string    `bson:"googleId,omitempty" json:"googleId,omitempty"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Avatar       string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Provider     string    `bson:"provider" json:"provider"`
	PasswordHash string    `bson:"passwordHash,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SessionUser is the secret-free projection of a User handed to clients
// and persisted in their durable session storage.
type SessionUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
	Provider string `json:"provider"`
}

// SessionUser returns the client-visible projection of the record.
func (u *User) SessionUser() *SessionUser {
	return &SessionUser{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Avatar:   u.Avatar,
		Provider: u.Provider,
	}
}
