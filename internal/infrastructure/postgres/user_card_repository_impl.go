package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
	"github.com/pokebase/pokebase-api/internal/domain/repository"
)

const userCardColumns = `uc.id, uc.user_id, uc.card_id, uc.quality, uc.for_sale, uc.price::text, uc.notes, uc.created_at, uc.updated_at`

const userCardListFrom = ` FROM user_cards uc
	JOIN users u ON u.id = uc.user_id
	JOIN cards c ON c.id = uc.card_id
	JOIN sets s ON s.id = c.set_id`

type UserCardRepository struct {
	db DB
}

func NewUserCardRepository(db DB) *UserCardRepository {
	return &UserCardRepository{db: db}
}

// price is read as text so NUMERIC keeps its exact scale.
func priceArg(p *decimal.Decimal) any {
	if p == nil {
		return nil
	}
	return p.StringFixed(2)
}

func parsePrice(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanUserCard(row pgx.Row, extra ...any) (*entity.UserCard, error) {
	uc := &entity.UserCard{}
	var price *string
	targets := append([]any{&uc.ID, &uc.UserID, &uc.CardID, &uc.Quality, &uc.ForSale, &price, &uc.Notes, &uc.CreatedAt, &uc.UpdatedAt}, extra...)
	if err := row.Scan(targets...); err != nil {
		return nil, mapErr(err)
	}
	p, err := parsePrice(price)
	if err != nil {
		return nil, err
	}
	uc.Price = p
	return uc, nil
}

func (r *UserCardRepository) Create(ctx context.Context, uc *entity.UserCard) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO user_cards (user_id, card_id, quality, for_sale, price, notes)
		VALUES ($1, $2, $3, $4, $5::numeric, $6)
		RETURNING id, created_at, updated_at
	`, uc.UserID, uc.CardID, uc.Quality, uc.ForSale, priceArg(uc.Price), uc.Notes)
	return mapErr(row.Scan(&uc.ID, &uc.CreatedAt, &uc.UpdatedAt))
}

func (r *UserCardRepository) GetByID(ctx context.Context, id, userID string) (*entity.UserCard, error) {
	if !validUUID(id) {
		return nil, repository.ErrNotFound
	}
	return scanUserCard(r.db.QueryRow(ctx, `SELECT `+userCardColumns+` FROM user_cards uc WHERE uc.id = $1 AND uc.user_id = $2`, id, userID))
}

func (r *UserCardRepository) list(ctx context.Context, where string, args ...any) ([]entity.UserCard, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userCardColumns+`, u.name, `+cardColumns+`, `+setColumns+userCardListFrom+` WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]entity.UserCard, 0)
	for rows.Next() {
		card := &entity.Card{}
		var seller string
		uc, err := scanUserCard(rows, append([]any{&seller}, cardWithSetTargets(card)...)...)
		if err != nil {
			return nil, err
		}
		card.SetName = card.Set.Name
		uc.Card = card
		uc.SellerName = seller
		out = append(out, *uc)
	}
	return out, rows.Err()
}

func (r *UserCardRepository) ListByUser(ctx context.Context, userID string) ([]entity.UserCard, error) {
	if !validUUID(userID) {
		return []entity.UserCard{}, nil
	}
	return r.list(ctx, `uc.user_id = $1 ORDER BY uc.created_at DESC`, userID)
}

func (r *UserCardRepository) ListForSale(ctx context.Context) ([]entity.UserCard, error) {
	return r.list(ctx, `uc.for_sale ORDER BY uc.created_at DESC`)
}

func (r *UserCardRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	if !validUUID(userID) {
		return 0, nil
	}
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM user_cards WHERE user_id = $1`, userID).Scan(&n)
	return n, mapErr(err)
}

func (r *UserCardRepository) Update(ctx context.Context, uc *entity.UserCard) error {
	uc.UpdatedAt = time.Now()
	res, err := r.db.Exec(ctx, `
		UPDATE user_cards
		SET quality = $1, for_sale = $2, price = $3::numeric, notes = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`, uc.Quality, uc.ForSale, priceArg(uc.Price), uc.Notes, uc.UpdatedAt, uc.ID, uc.UserID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserCardRepository) Delete(ctx context.Context, id, userID string) error {
	if !validUUID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.Exec(ctx, `DELETE FROM user_cards WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserCardRepository = (*UserCardRepository)(nil)
