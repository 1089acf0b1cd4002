package application

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
	repo "github.com/pokebase/pokebase-api/internal/domain/repository"
	"github.com/pokebase/pokebase-api/internal/infrastructure/tcgapi"
)

// Sync counters, published under /api/debug/vars.
var syncStats = expvar.NewMap("sync")

// SyncResult is the outcome of one bulk sync run.
type SyncResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	UpdatedCount int    `json:"updated_count"`
	FailedCount  int    `json:"failed_count"`
}

// SyncService mirrors sets and cards from the card-data API. Each item is
// upserted independently; failures are logged and counted, never retried.
type SyncService struct {
	Source      CardSource
	Sets        repo.SetRepository
	Cards       repo.CardRepository
	Index       CardIndex
	Catalog     *CatalogService
	Concurrency int
	Logger      *logrus.Logger
	Now         func() time.Time
}

func NewSyncService(source CardSource, sets repo.SetRepository, cards repo.CardRepository, index CardIndex,
	catalog *CatalogService, concurrency int, logger *logrus.Logger) *SyncService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &SyncService{
		Source:      source,
		Sets:        sets,
		Cards:       cards,
		Index:       index,
		Catalog:     catalog,
		Concurrency: concurrency,
		Logger:      logger,
		Now:         time.Now,
	}
}

// settle runs fn over items with bounded concurrency and returns one error
// slot per item. A failing item never cancels the others.
func settle[T any](ctx context.Context, limit int, items []T, fn func(context.Context, T) error) []error {
	errs := make([]error, len(items))
	var g errgroup.Group
	g.SetLimit(limit)
	for i := range items {
		g.Go(func() error {
			errs[i] = fn(ctx, items[i])
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func (s *SyncService) UpdateSets(ctx context.Context) (*SyncResult, error) {
	if s.Source == nil {
		return nil, ErrNotConfigured
	}
	sets, err := s.Source.AllSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch sets: %w", err)
	}
	now := s.Now()
	errs := settle(ctx, s.Concurrency, sets, func(ctx context.Context, in tcgapi.Set) error {
		return s.Sets.Upsert(ctx, mapSet(in, now))
	})

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			s.logFailure("set", sets[i].ID, sets[i].Name, err)
		}
	}
	updated := len(sets) - failed
	syncStats.Add("sets_updated", int64(updated))
	syncStats.Add("sets_failed", int64(failed))
	s.markRun("sets_last_run")

	res := &SyncResult{Success: failed == 0, UpdatedCount: updated, FailedCount: failed}
	if failed == 0 {
		res.Message = "Sets updated successfully"
	} else {
		res.Message = fmt.Sprintf("%d sets failed to update", failed)
	}
	return res, nil
}

// UpdateCards upserts every card. Existing cards only get fresh prices.
// Successfully written cards are pushed to the search index and the
// search cache is dropped.
func (s *SyncService) UpdateCards(ctx context.Context) (*SyncResult, error) {
	if s.Source == nil {
		return nil, ErrNotConfigured
	}
	src, err := s.Source.AllCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch cards: %w", err)
	}
	if len(src) == 0 {
		return &SyncResult{Success: true, Message: "No cards found to update"}, nil
	}

	cards := make([]entity.Card, len(src))
	for i, c := range src {
		cards[i] = mapCard(c)
	}
	errs := settle(ctx, s.Concurrency, cards, func(ctx context.Context, c entity.Card) error {
		return s.Cards.Upsert(ctx, &c)
	})

	written := make([]entity.Card, 0, len(cards))
	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			s.logFailure("card", cards[i].ID, cards[i].Name, err)
			continue
		}
		written = append(written, cards[i])
	}
	syncStats.Add("cards_updated", int64(len(written)))
	syncStats.Add("cards_failed", int64(failed))
	s.markRun("cards_last_run")

	if s.Index != nil {
		if err := s.Index.IndexCards(ctx, written); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("card index update failed")
		}
	}
	if s.Catalog != nil {
		if _, err := s.Catalog.InvalidateSearchCache(ctx); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("search cache invalidation failed")
		}
	}

	res := &SyncResult{Success: failed == 0, UpdatedCount: len(written), FailedCount: failed}
	if failed == 0 {
		res.Message = "Cards updated successfully"
	} else {
		res.Message = fmt.Sprintf("%d cards failed to update", failed)
	}
	return res, nil
}

func (s *SyncService) logFailure(kind, id, name string, err error) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(logrus.Fields{"id": id, "name": name}).Errorf("failed to upsert %s", kind)
}

func (s *SyncService) markRun(key string) {
	v := new(expvar.String)
	v.Set(s.Now().UTC().Format(time.RFC3339))
	syncStats.Set(key, v)
}

// mapSet falls back to now for a missing release date.
func mapSet(in tcgapi.Set, now time.Time) *entity.Set {
	released, ok := tcgapi.ParseReleaseDate(in.ReleaseDate)
	if !ok {
		released = now
	}
	return &entity.Set{
		ID:          in.ID,
		Name:        in.Name,
		Series:      in.Series,
		ReleaseDate: released,
		Total:       in.Total,
		SymbolImage: in.Images.Symbol,
		LogoImage:   in.Images.Logo,
	}
}

func mapCard(in tcgapi.Card) entity.Card {
	c := entity.Card{
		ID:        in.ID,
		Name:      in.Name,
		Supertype: in.Supertype,
		HP:        in.HP,
		Types:     in.Types,
		SetID:     in.Set.ID,
		SetName:   in.Set.Name,
		Number:    in.Number,
		Artist:    in.Artist,
		Rarity:    in.Rarity,
		Image:     in.Images.Large,
		Prices: entity.CardPrices{
			Normal:          priceBand(in.Prices("normal")),
			Holofoil:        priceBand(in.Prices("holofoil")),
			ReverseHolofoil: priceBand(in.Prices("reverseHolofoil")),
		},
	}
	if c.Types == nil {
		c.Types = []string{}
	}
	if len(in.Subtypes) > 0 {
		c.Subtype = in.Subtypes[0]
	}
	if c.Image == "" {
		c.Image = in.Images.Small
	}
	if in.EvolvesFrom != "" {
		from := in.EvolvesFrom
		c.EvolvesFrom = &from
	}
	if len(in.EvolvesTo) > 0 {
		b, _ := json.Marshal(in.EvolvesTo)
		to := string(b)
		c.EvolvesTo = &to
	}
	return c
}

func priceBand(p *tcgapi.Price) entity.PriceBand {
	if p == nil {
		return entity.PriceBand{}
	}
	return entity.PriceBand{Low: p.Low, Mid: p.Mid, High: p.High, Market: p.Market}
}
