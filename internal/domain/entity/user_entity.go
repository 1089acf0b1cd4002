package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash and is empty for OAuth-only accounts.
// EmailVerified is nil until the one-time code is confirmed or an OAuth
// provider vouches for the address.
type User struct {
	ID            string
	Email         string
	Password      string
	Name          string
	Image         string
	EmailVerified *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u *User) IsVerified() bool {
	return u != nil && u.EmailVerified != nil
}

func (u *User) HasPassword() bool {
	return u != nil && u.Password != ""
}

// Account links a User to an OAuth provider identity.
type Account struct {
	ID                string
	UserID            string
	Type              string
	Provider          string
	ProviderAccountID string
	RefreshToken      string
	AccessToken       string
	ExpiresAt         int64
	TokenType         string
	Scope             string
	IDToken           string
	CreatedAt         time.Time
}

// EmailVerificationToken is the one-time code mailed on signup or resend.
// There is at most one live token per email.
type EmailVerificationToken struct {
	ID        string
	UserID    string
	Email     string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

func (t *EmailVerificationToken) Expired(now time.Time) bool {
	return now.After(t.Expires)
}
