package repository

import (
	"context"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
)

// UserCardRepository manages collection entries. Reads and writes keyed by
// entry id are scoped to the owning user.
type UserCardRepository interface {
	Create(ctx context.Context, uc *entity.UserCard) error
	GetByID(ctx context.Context, id, userID string) (*entity.UserCard, error)
	ListByUser(ctx context.Context, userID string) ([]entity.UserCard, error)
	ListForSale(ctx context.Context) ([]entity.UserCard, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, uc *entity.UserCard) error
	Delete(ctx context.Context, id, userID string) error
}
