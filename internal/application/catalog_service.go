package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
	repo "github.com/pokebase/pokebase-api/internal/domain/repository"
	"github.com/pokebase/pokebase-api/internal/infrastructure/tcgapi"
	"github.com/pokebase/pokebase-api/pkg/helpers"
)

const (
	// MinSearchLength is the shortest query that reaches the database.
	MinSearchLength = 3

	searchCachePrefix = "search:"
)

type CatalogService struct {
	Sets     repo.SetRepository
	Cards    repo.CardRepository
	Index    CardIndex
	Source   CardSource
	Redis    *redis.Client
	CacheTTL time.Duration
	Logger   *logrus.Logger
}

func NewCatalogService(sets repo.SetRepository, cards repo.CardRepository, index CardIndex, source CardSource,
	rdb *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		Sets:     sets,
		Cards:    cards,
		Index:    index,
		Source:   source,
		Redis:    rdb,
		CacheTTL: cacheTTL,
		Logger:   logger,
	}
}

// SearchTerms lower-cases and splits the query on whitespace.
func SearchTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Search returns cards where every term matches the name, number or set name.
// Queries shorter than MinSearchLength return an empty result.
func (s *CatalogService) Search(ctx context.Context, query string) ([]entity.Card, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchLength {
		return []entity.Card{}, nil
	}
	terms := SearchTerms(query)
	key := searchCachePrefix + strings.Join(terms, " ")

	if s.Redis != nil {
		var cached []entity.Card
		ok, err := helpers.RedisGetJSON(ctx, s.Redis, key, &cached)
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("search cache read failed")
		}
		if ok {
			return cached, nil
		}
	}

	cards, err := s.search(ctx, terms)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []entity.Card{}
	}
	if s.Redis != nil && s.CacheTTL > 0 {
		if err := helpers.RedisSetJSON(ctx, s.Redis, key, cards, s.CacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("search cache write failed")
		}
	}
	return cards, nil
}

// search narrows by the index and loads the matching rows from Postgres. An
// empty or failed index answer is rechecked against Postgres, which covers an
// index created after the catalog was synced.
func (s *CatalogService) search(ctx context.Context, terms []string) ([]entity.Card, error) {
	if s.Index != nil {
		ids, err := s.Index.Search(ctx, terms)
		switch {
		case err != nil:
			if s.Logger != nil {
				s.Logger.WithError(err).Warn("search index unavailable, falling back to postgres")
			}
		case len(ids) > 0:
			return s.Cards.ListByIDs(ctx, ids)
		}
	}
	return s.Cards.Search(ctx, terms)
}

// InvalidateSearchCache drops every cached search result.
func (s *CatalogService) InvalidateSearchCache(ctx context.Context) (int, error) {
	if s.Redis == nil {
		return 0, nil
	}
	return helpers.RedisDelPrefix(ctx, s.Redis, searchCachePrefix)
}

func (s *CatalogService) Card(ctx context.Context, id string) (*entity.Card, error) {
	c, err := s.Cards.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCardNotFound
	}
	return c, err
}

func (s *CatalogService) ListSets(ctx context.Context) ([]entity.Set, error) {
	return s.Sets.List(ctx)
}

func (s *CatalogService) Set(ctx context.Context, id string) (*entity.Set, error) {
	set, err := s.Sets.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSetNotFound
	}
	return set, err
}

// SetCards lists a set's cards, or ErrSetNotFound for an unknown set.
func (s *CatalogService) SetCards(ctx context.Context, setID string) ([]entity.Card, error) {
	if _, err := s.Set(ctx, setID); err != nil {
		return nil, err
	}
	return s.Cards.ListBySet(ctx, setID)
}

// SearchSource passes a raw query through to the card-data API.
func (s *CatalogService) SearchSource(ctx context.Context, q string) ([]tcgapi.Card, error) {
	if s.Source == nil {
		return nil, ErrNotConfigured
	}
	return s.Source.SearchCards(ctx, q)
}
