package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
	"github.com/pokebase/pokebase-api/internal/domain/repository"
)

const setColumns = `s.id, s.name, s.series, s.release_date, s.total, s.symbol_image, s.logo_image, s.created_at, s.updated_at`

const cardColumns = `c.id, c.name, c.supertype, c.subtype, c.hp, c.types, c.evolves_from, c.evolves_to,
	c.set_id, c.number, c.artist, c.rarity, c.image,
	c.normal_low_price, c.normal_mid_price, c.normal_high_price, c.normal_market_val,
	c.holofoil_low_price, c.holofoil_mid_price, c.holofoil_high_price, c.holofoil_market_val,
	c.reverse_holofoil_low_price, c.reverse_holofoil_mid_price, c.reverse_holofoil_high_price, c.reverse_holofoil_market_val,
	c.created_at, c.updated_at`

const cardFrom = ` FROM cards c JOIN sets s ON s.id = c.set_id`

const searchOrder = ` ORDER BY s.release_date DESC, c.name, c.id`

func setTargets(s *entity.Set) []any {
	return []any{&s.ID, &s.Name, &s.Series, &s.ReleaseDate, &s.Total, &s.SymbolImage, &s.LogoImage, &s.CreatedAt, &s.UpdatedAt}
}

func cardTargets(c *entity.Card) []any {
	p := &c.Prices
	return []any{
		&c.ID, &c.Name, &c.Supertype, &c.Subtype, &c.HP, &c.Types, &c.EvolvesFrom, &c.EvolvesTo,
		&c.SetID, &c.Number, &c.Artist, &c.Rarity, &c.Image,
		&p.Normal.Low, &p.Normal.Mid, &p.Normal.High, &p.Normal.Market,
		&p.Holofoil.Low, &p.Holofoil.Mid, &p.Holofoil.High, &p.Holofoil.Market,
		&p.ReverseHolofoil.Low, &p.ReverseHolofoil.Mid, &p.ReverseHolofoil.High, &p.ReverseHolofoil.Market,
		&c.CreatedAt, &c.UpdatedAt,
	}
}

// cardWithSetTargets returns scan targets for cardColumns followed by setColumns.
func cardWithSetTargets(c *entity.Card) []any {
	c.Set = &entity.Set{}
	return append(cardTargets(c), setTargets(c.Set)...)
}

func collectCards(rows pgx.Rows) ([]entity.Card, error) {
	defer rows.Close()
	out := make([]entity.Card, 0)
	for rows.Next() {
		var c entity.Card
		if err := rows.Scan(cardWithSetTargets(&c)...); err != nil {
			return nil, err
		}
		c.SetName = c.Set.Name
		out = append(out, c)
	}
	return out, rows.Err()
}

type SetRepository struct {
	db DB
}

func NewSetRepository(db DB) *SetRepository {
	return &SetRepository{db: db}
}

func (r *SetRepository) Upsert(ctx context.Context, s *entity.Set) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sets (id, name, series, release_date, total, symbol_image, logo_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			series = EXCLUDED.series,
			release_date = EXCLUDED.release_date,
			total = EXCLUDED.total,
			symbol_image = EXCLUDED.symbol_image,
			logo_image = EXCLUDED.logo_image,
			updated_at = now()
	`, s.ID, s.Name, s.Series, s.ReleaseDate, s.Total, s.SymbolImage, s.LogoImage)
	return mapErr(err)
}

func (r *SetRepository) GetByID(ctx context.Context, id string) (*entity.Set, error) {
	s := &entity.Set{}
	if err := r.db.QueryRow(ctx, `SELECT `+setColumns+` FROM sets s WHERE s.id = $1`, id).Scan(setTargets(s)...); err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *SetRepository) List(ctx context.Context) ([]entity.Set, error) {
	rows, err := r.db.Query(ctx, `SELECT `+setColumns+` FROM sets s ORDER BY s.release_date DESC, s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]entity.Set, 0)
	for rows.Next() {
		var s entity.Set
		if err := rows.Scan(setTargets(&s)...); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type CardRepository struct {
	db DB
}

func NewCardRepository(db DB) *CardRepository {
	return &CardRepository{db: db}
}

// Upsert writes all columns for a new card. For an existing card only the
// price columns and updated_at are overwritten.
func (r *CardRepository) Upsert(ctx context.Context, c *entity.Card) error {
	p := c.Prices
	types := c.Types
	if types == nil {
		types = []string{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO cards (id, name, supertype, subtype, hp, types, evolves_from, evolves_to,
			set_id, number, artist, rarity, image,
			normal_low_price, normal_mid_price, normal_high_price, normal_market_val,
			holofoil_low_price, holofoil_mid_price, holofoil_high_price, holofoil_market_val,
			reverse_holofoil_low_price, reverse_holofoil_mid_price, reverse_holofoil_high_price, reverse_holofoil_market_val)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		ON CONFLICT (id) DO UPDATE SET
			normal_low_price = EXCLUDED.normal_low_price,
			normal_mid_price = EXCLUDED.normal_mid_price,
			normal_high_price = EXCLUDED.normal_high_price,
			normal_market_val = EXCLUDED.normal_market_val,
			holofoil_low_price = EXCLUDED.holofoil_low_price,
			holofoil_mid_price = EXCLUDED.holofoil_mid_price,
			holofoil_high_price = EXCLUDED.holofoil_high_price,
			holofoil_market_val = EXCLUDED.holofoil_market_val,
			reverse_holofoil_low_price = EXCLUDED.reverse_holofoil_low_price,
			reverse_holofoil_mid_price = EXCLUDED.reverse_holofoil_mid_price,
			reverse_holofoil_high_price = EXCLUDED.reverse_holofoil_high_price,
			reverse_holofoil_market_val = EXCLUDED.reverse_holofoil_market_val,
			updated_at = now()
	`, c.ID, c.Name, c.Supertype, c.Subtype, c.HP, types, c.EvolvesFrom, c.EvolvesTo,
		c.SetID, c.Number, c.Artist, c.Rarity, c.Image,
		p.Normal.Low, p.Normal.Mid, p.Normal.High, p.Normal.Market,
		p.Holofoil.Low, p.Holofoil.Mid, p.Holofoil.High, p.Holofoil.Market,
		p.ReverseHolofoil.Low, p.ReverseHolofoil.Mid, p.ReverseHolofoil.High, p.ReverseHolofoil.Market)
	return mapErr(err)
}

func (r *CardRepository) GetByID(ctx context.Context, id string) (*entity.Card, error) {
	c := &entity.Card{}
	row := r.db.QueryRow(ctx, `SELECT `+cardColumns+`, `+setColumns+cardFrom+` WHERE c.id = $1`, id)
	if err := row.Scan(cardWithSetTargets(c)...); err != nil {
		return nil, mapErr(err)
	}
	c.SetName = c.Set.Name
	return c, nil
}

func (r *CardRepository) ListBySet(ctx context.Context, setID string) ([]entity.Card, error) {
	rows, err := r.db.Query(ctx, `SELECT `+cardColumns+`, `+setColumns+cardFrom+
		` WHERE c.set_id = $1 ORDER BY length(c.number), c.number`, setID)
	if err != nil {
		return nil, err
	}
	return collectCards(rows)
}

func (r *CardRepository) Search(ctx context.Context, terms []string) ([]entity.Card, error) {
	if len(terms) == 0 {
		return []entity.Card{}, nil
	}
	query, args := buildSearchQuery(terms)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectCards(rows)
}

// buildSearchQuery ANDs one clause per term; each clause ORs the card name,
// card number and set name with a case-insensitive substring match.
func buildSearchQuery(terms []string) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + cardColumns + `, ` + setColumns + cardFrom + ` WHERE `)
	args := make([]any, 0, len(terms))
	for i, t := range terms {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		args = append(args, "%"+escapeLike(t)+"%")
		n := len(args)
		fmt.Fprintf(&sb, "(c.name ILIKE $%d OR c.number ILIKE $%d OR s.name ILIKE $%d)", n, n, n)
	}
	sb.WriteString(searchOrder)
	return sb.String(), args
}

func (r *CardRepository) ListByIDs(ctx context.Context, ids []string) ([]entity.Card, error) {
	if len(ids) == 0 {
		return []entity.Card{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+cardColumns+`, `+setColumns+cardFrom+` WHERE c.id = ANY($1)`+searchOrder, ids)
	if err != nil {
		return nil, err
	}
	return collectCards(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var (
	_ repository.SetRepository  = (*SetRepository)(nil)
	_ repository.CardRepository = (*CardRepository)(nil)
)
