package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
	repo "github.com/pokebase/pokebase-api/internal/domain/repository"
)

// CollectionService manages the cards a user owns and lists for sale.
type CollectionService struct {
	Cards     repo.CardRepository
	UserCards repo.UserCardRepository
	Logger    *logrus.Logger
}

func NewCollectionService(cards repo.CardRepository, userCards repo.UserCardRepository, logger *logrus.Logger) *CollectionService {
	return &CollectionService{Cards: cards, UserCards: userCards, Logger: logger}
}

type AddCardInput struct {
	CardID  string
	Quality string
	ForSale bool
	Price   *decimal.Decimal
	Notes   string
}

// Add records a catalog card in the user's collection. Quality defaults to NM.
func (s *CollectionService) Add(ctx context.Context, userID string, in AddCardInput) (*entity.UserCard, error) {
	card, err := s.Cards.GetByID(ctx, in.CardID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	quality := entity.NormalizeQuality(in.Quality)
	if quality == "" {
		quality = entity.QualityNearMint
	}
	uc := &entity.UserCard{
		UserID:  userID,
		CardID:  card.ID,
		Quality: quality,
		ForSale: in.ForSale,
		Price:   roundPrice(in.Price),
		Notes:   in.Notes,
	}
	if err := s.UserCards.Create(ctx, uc); err != nil {
		return nil, err
	}
	uc.Card = card
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": userID, "card_id": card.ID, "user_card_id": uc.ID}).Info("card added to collection")
	}
	return uc, nil
}

func (s *CollectionService) List(ctx context.Context, userID string) ([]entity.UserCard, error) {
	list, err := s.UserCards.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entity.UserCard{}
	}
	return list, nil
}

// UpdateCardInput nil fields are left unchanged.
type UpdateCardInput struct {
	Quality *string
	ForSale *bool
	Price   *decimal.Decimal
	Notes   *string
}

func (s *CollectionService) Update(ctx context.Context, userID, id string, in UpdateCardInput) (*entity.UserCard, error) {
	uc, err := s.UserCards.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserCardNotFound
		}
		return nil, err
	}
	if in.Quality != nil {
		uc.Quality = entity.NormalizeQuality(*in.Quality)
	}
	if in.ForSale != nil {
		uc.ForSale = *in.ForSale
	}
	if in.Price != nil {
		uc.Price = roundPrice(in.Price)
	}
	if in.Notes != nil {
		uc.Notes = *in.Notes
	}
	if err := s.UserCards.Update(ctx, uc); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserCardNotFound
		}
		return nil, err
	}
	return uc, nil
}

func (s *CollectionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.UserCards.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserCardNotFound
		}
		return err
	}
	return nil
}

// Marketplace lists every for-sale card with its seller, newest first.
func (s *CollectionService) Marketplace(ctx context.Context) ([]entity.UserCard, error) {
	list, err := s.UserCards.ListForSale(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entity.UserCard{}
	}
	return list, nil
}

// roundPrice matches the numeric(12,2) column.
func roundPrice(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	r := p.Round(2)
	return &r
}
