package repository

import (
	"context"
	"time"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	MarkVerified(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// AccountRepository stores OAuth provider linkages.
type AccountRepository interface {
	GetByProvider(ctx context.Context, provider, providerAccountID string) (*entity.Account, error)
	Create(ctx context.Context, a *entity.Account) error
	// CreateWithUser inserts a new user and its first linked account atomically.
	CreateWithUser(ctx context.Context, u *entity.User, a *entity.Account) error
}

// VerificationRepository stores one-time email verification codes.
type VerificationRepository interface {
	// Upsert replaces the code and expiry of any existing token for the email.
	Upsert(ctx context.Context, t *entity.EmailVerificationToken) error
	Find(ctx context.Context, email, token string) (*entity.EmailVerificationToken, error)
	// Confirm marks the token's user verified and deletes the token in one transaction.
	Confirm(ctx context.Context, t *entity.EmailVerificationToken, at time.Time) (*entity.User, error)
}
