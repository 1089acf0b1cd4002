package repository

import (
	"context"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
)

type SetRepository interface {
	Upsert(ctx context.Context, s *entity.Set) error
	GetByID(ctx context.Context, id string) (*entity.Set, error)
	List(ctx context.Context) ([]entity.Set, error)
}

// CardRepository reads and writes the card catalog.
// Upsert inserts every field for a new card but overwrites only prices on an existing one.
type CardRepository interface {
	Upsert(ctx context.Context, c *entity.Card) error
	GetByID(ctx context.Context, id string) (*entity.Card, error)
	ListBySet(ctx context.Context, setID string) ([]entity.Card, error)
	// Search returns cards where every term matches name, number or set name.
	Search(ctx context.Context, terms []string) ([]entity.Card, error)
	// ListByIDs loads the given cards in the same order Search uses.
	ListByIDs(ctx context.Context, ids []string) ([]entity.Card, error)
}
