package application

import (
	"context"
	"io"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
	"github.com/pokebase/pokebase-api/internal/infrastructure/tcgapi"
	"github.com/pokebase/pokebase-api/pkg/mailer"
)

// Mailer hands an email job to the delivery pipeline (queue or inline send).
type Mailer interface {
	Dispatch(ctx context.Context, job mailer.EmailJob) error
}

// ObjectStore persists uploaded files and returns their public URL.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// CardIndex is the search index kept alongside the card table. Search
// returns the ids of matching cards.
type CardIndex interface {
	IndexCards(ctx context.Context, cards []entity.Card) error
	Search(ctx context.Context, terms []string) ([]string, error)
}

// CardSource is the external card-data API.
type CardSource interface {
	AllSets(ctx context.Context) ([]tcgapi.Set, error)
	AllCards(ctx context.Context) ([]tcgapi.Card, error)
	SearchCards(ctx context.Context, query string) ([]tcgapi.Card, error)
}
