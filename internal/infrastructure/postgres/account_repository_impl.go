package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
	"github.com/pokebase/pokebase-api/internal/domain/repository"
)

type AccountRepository struct {
	db DB
}

func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByProvider(ctx context.Context, provider, providerAccountID string) (*entity.Account, error) {
	a := &entity.Account{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, type, provider, provider_account_id, refresh_token, access_token,
		       expires_at, token_type, scope, id_token, created_at
		FROM accounts
		WHERE provider = $1 AND provider_account_id = $2
	`, provider, providerAccountID).Scan(&a.ID, &a.UserID, &a.Type, &a.Provider, &a.ProviderAccountID,
		&a.RefreshToken, &a.AccessToken, &a.ExpiresAt, &a.TokenType, &a.Scope, &a.IDToken, &a.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func insertAccount(ctx context.Context, q Querier, a *entity.Account) error {
	row := q.QueryRow(ctx, `
		INSERT INTO accounts (user_id, type, provider, provider_account_id, refresh_token,
		                      access_token, expires_at, token_type, scope, id_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, a.UserID, a.Type, a.Provider, a.ProviderAccountID, a.RefreshToken,
		a.AccessToken, a.ExpiresAt, a.TokenType, a.Scope, a.IDToken)
	return mapErr(row.Scan(&a.ID, &a.CreatedAt))
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	return insertAccount(ctx, r.db, a)
}

func (r *AccountRepository) CreateWithUser(ctx context.Context, u *entity.User, a *entity.Account) error {
	return WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}
		a.UserID = u.ID
		return insertAccount(ctx, tx, a)
	})
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
