package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

type Account struct {
	ID            string    `bson:"_id,omitempty" json:"_id"`
	Name          string    `bson:"name" json:"name"`
	Email         string    `bson:"email" json:"email"`
	PasswordHash  string    `bson:"password_hash,omitempty" json:"-"`
	Role          Role      `bson:"role" json:"role"`
	Provider      string    `bson:"provider" json:"provider"`
	Verified      bool      `bson:"verified" json:"verified"`
	VerifyToken   string    `bson:"verify_token,omitempty" json:"-"`
	VerifyExpires time.Time `bson:"verify_expires,omitempty" json:"-"`
	ResetToken    string    `bson:"reset_token,omitempty" json:"-"`
	ResetExpires  time.Time `bson:"reset_expires,omitempty" json:"-"`
	Cart          Cart      `bson:"cart" json:"cartData"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
