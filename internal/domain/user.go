package domain

import (
	"time"
)

// Account is the identity-provider record. UID is provider-assigned and
// immutable; the password never leaves the provider in clear form.
type Account struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the denormalized document kept in the profile store,
// keyed by the account UID.
type Profile struct {
	UID       string    `bson:"_id"        json:"uid"`
	Name      string    `bson:"name"       json:"name"`
	Email     string    `bson:"email"      json:"email"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// SessionUser is what the session record holds about the signed-in user.
type SessionUser struct {
	Email string `json:"email"`
	UID   string `json:"uid"`
}
