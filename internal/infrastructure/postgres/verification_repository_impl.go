package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
	"github.com/pokebase/pokebase-api/internal/domain/repository"
)

type VerificationRepository struct {
	db DB
}

func NewVerificationRepository(db DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Upsert(ctx context.Context, t *entity.EmailVerificationToken) error {
	t.Email = strings.ToLower(t.Email)
	row := r.db.QueryRow(ctx, `
		INSERT INTO email_verification_tokens (user_id, email, token, expires)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET token = EXCLUDED.token, expires = EXCLUDED.expires
		RETURNING id, created_at
	`, t.UserID, t.Email, t.Token, t.Expires)
	return mapErr(row.Scan(&t.ID, &t.CreatedAt))
}

func (r *VerificationRepository) Find(ctx context.Context, email, token string) (*entity.EmailVerificationToken, error) {
	t := &entity.EmailVerificationToken{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, email, token, expires, created_at
		FROM email_verification_tokens
		WHERE email = $1 AND token = $2
	`, strings.ToLower(email), token).Scan(&t.ID, &t.UserID, &t.Email, &t.Token, &t.Expires, &t.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

func (r *VerificationRepository) Confirm(ctx context.Context, t *entity.EmailVerificationToken, at time.Time) (*entity.User, error) {
	var u *entity.User
	err := WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := markVerified(ctx, tx, t.UserID, at); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM email_verification_tokens WHERE id = $1`, t.ID); err != nil {
			return mapErr(err)
		}
		var err error
		u, err = scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, t.UserID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

var _ repository.VerificationRepository = (*VerificationRepository)(nil)
