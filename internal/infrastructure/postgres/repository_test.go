package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
	"github.com/pokebase/pokebase-api/internal/domain/repository"
)

const testUserID = "0b5c8a3e-7f0e-4c55-9d3a-2a1b8f6c1d01"

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func strPtr(s string) *string { return &s }

func userRow(now time.Time, verified *time.Time) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "email", "password", "name", "image", "email_verified", "created_at", "updated_at"})
	if verified == nil {
		return rows.AddRow(testUserID, "ash@pallet.town", "hash", "Ash", "", nil, now, now)
	}
	return rows.AddRow(testUserID, "ash@pallet.town", "hash", "Ash", "", verified, now, now)
}

func cardColumnNames() []string {
	cols := []string{"id", "name", "supertype", "subtype", "hp", "types", "evolves_from", "evolves_to",
		"set_id", "number", "artist", "rarity", "image"}
	for _, v := range []string{"normal", "holofoil", "reverse_holofoil"} {
		cols = append(cols, v+"_low", v+"_mid", v+"_high", v+"_market")
	}
	cols = append(cols, "created_at", "updated_at")
	return append(cols, "s_id", "s_name", "s_series", "s_release_date", "s_total", "s_symbol", "s_logo", "s_created_at", "s_updated_at")
}

func cardRowValues(id string, now time.Time, market *float64) []any {
	vals := []any{id, "Charizard", "Pokémon", "Stage 2", "120", []string{"Fire"}, strPtr("Charmeleon"), nil,
		"base1", "4", "Mitsuhiro Arita", "Rare Holo", "https://images.example/base1-4.png"}
	for i := 0; i < 12; i++ {
		if i == 7 {
			vals = append(vals, market)
			continue
		}
		vals = append(vals, nil)
	}
	vals = append(vals, now, now)
	return append(vals, "base1", "Base", "Base", time.Date(1999, 1, 9, 0, 0, 0, 0, time.UTC), 102, "sym", "logo", now, now)
}

func TestUserRepository_CreateLowercasesEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (email, password, name, image, email_verified)`)).
		WithArgs("ash@pallet.town", "hash", "Ash", "", (*time.Time)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(testUserID, now, now))

	u := &entity.User{Email: "Ash@Pallet.Town", Password: "hash", Name: "Ash"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, testUserID, u.ID)
	assert.Equal(t, "ash@pallet.town", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &entity.User{Email: "a@b.c"})
	assert.ErrorIs(t, err, repository.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("ash@pallet.town").
		WillReturnRows(userRow(now, &now))

	u, err := repo.GetByEmail(context.Background(), "ASH@pallet.town")
	require.NoError(t, err)
	assert.Equal(t, "Ash", u.Name)
	assert.True(t, u.IsVerified())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByIDRejectsMalformedID(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateMissingRow(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs("misty@cerulean.gym", "", "Misty", "", pgxmock.AnyArg(), testUserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &entity.User{ID: testUserID, Email: "Misty@Cerulean.Gym", Name: "Misty"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepository_ConfirmCommits(t *testing.T) {
	mock := newMock(t)
	repo := NewVerificationRepository(mock)
	now := time.Now()
	tok := &entity.EmailVerificationToken{ID: "tok-1", UserID: testUserID, Email: "ash@pallet.town"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET email_verified = $1`)).
		WithArgs(now, testUserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM email_verification_tokens WHERE id = $1`)).
		WithArgs("tok-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs(testUserID).
		WillReturnRows(userRow(now, &now))
	mock.ExpectCommit()

	u, err := repo.Confirm(context.Background(), tok, now)
	require.NoError(t, err)
	assert.True(t, u.IsVerified())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepository_ConfirmRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewVerificationRepository(mock)
	now := time.Now()
	tok := &entity.EmailVerificationToken{ID: "tok-1", UserID: testUserID}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET email_verified`)).
		WithArgs(now, testUserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM email_verification_tokens`)).
		WithArgs("tok-1").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Confirm(context.Background(), tok, now)
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepository_FindNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewVerificationRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM email_verification_tokens`)).
		WithArgs("ash@pallet.town", "123456").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "email", "token", "expires", "created_at"}))

	_, err := repo.Find(context.Background(), "Ash@Pallet.Town", "123456")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildSearchQuery(t *testing.T) {
	q, args := buildSearchQuery([]string{"char", "4%"})

	assert.Contains(t, q, "(c.name ILIKE $1 OR c.number ILIKE $1 OR s.name ILIKE $1) AND (c.name ILIKE $2 OR c.number ILIKE $2 OR s.name ILIKE $2)")
	assert.True(t, strings.HasSuffix(q, searchOrder))
	assert.NotContains(t, q, "LIMIT")
	assert.Equal(t, []any{"%char%", `%4\%%`}, args)
}

func TestCardRepository_SearchScansSet(t *testing.T) {
	mock := newMock(t)
	repo := NewCardRepository(mock)
	now := time.Now()
	market := 310.5

	mock.ExpectQuery(regexp.QuoteMeta(`FROM cards c JOIN sets s ON s.id = c.set_id WHERE`)).
		WithArgs("%char%").
		WillReturnRows(pgxmock.NewRows(cardColumnNames()).AddRow(cardRowValues("base1-4", now, &market)...))

	cards, err := repo.Search(context.Background(), []string{"char"})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Base", cards[0].SetName)
	assert.Equal(t, "Charmeleon", *cards[0].EvolvesFrom)
	require.NotNil(t, cards[0].Prices.Holofoil.Market)
	assert.Equal(t, 310.5, *cards[0].Prices.Holofoil.Market)
	assert.Nil(t, cards[0].Prices.Normal.Low)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepository_SearchWithoutTermsSkipsQuery(t *testing.T) {
	mock := newMock(t)
	repo := NewCardRepository(mock)

	cards, err := repo.Search(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, cards)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepository_ListByIDsUsesSearchOrder(t *testing.T) {
	mock := newMock(t)
	repo := NewCardRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE c.id = ANY($1)` + searchOrder)).
		WithArgs([]string{"base1-4", "base2-4"}).
		WillReturnRows(pgxmock.NewRows(cardColumnNames()).
			AddRow(cardRowValues("base1-4", now, nil)...).
			AddRow(cardRowValues("base2-4", now, nil)...))

	cards, err := repo.ListByIDs(context.Background(), []string{"base1-4", "base2-4"})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	require.NotNil(t, cards[0].Set)
	assert.Equal(t, "Base", cards[0].Set.Name)
	assert.Equal(t, now, cards[1].CreatedAt)

	cards, err = repo.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, cards)
	require.NoError(t, mock.ExpectationsWereMet())
}

// recordingMock matches like the default regexp matcher and keeps the last
// statement so its text can be inspected.
func recordingMock(t *testing.T) (pgxmock.PgxPoolIface, *string) {
	t.Helper()
	var last string
	matcher := pgxmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
		last = actualSQL
		return pgxmock.QueryMatcherRegexp.Match(expectedSQL, actualSQL)
	})
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(matcher))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, &last
}

// updatedColumns lists the columns assigned after DO UPDATE SET.
func updatedColumns(sql string) []string {
	i := strings.Index(sql, "DO UPDATE SET")
	if i < 0 {
		return nil
	}
	rest := sql[i+len("DO UPDATE SET"):]
	if j := strings.Index(rest, "RETURNING"); j >= 0 {
		rest = rest[:j]
	}
	var cols []string
	for _, part := range strings.Split(rest, ",") {
		if k := strings.Index(part, "="); k >= 0 {
			cols = append(cols, strings.TrimSpace(part[:k]))
		}
	}
	return cols
}

func TestCardRepository_UpsertOverwritesOnlyPrices(t *testing.T) {
	mock, last := recordingMock(t)
	repo := NewCardRepository(mock)
	low, market := 1.25, 9.5
	evolvesTo := `["Charizard"]`
	card := &entity.Card{
		ID: "base1-24", Name: "Charmeleon", Supertype: "Pokémon", Subtype: "Stage 1", HP: "80",
		EvolvesFrom: strPtr("Charmander"), EvolvesTo: &evolvesTo,
		SetID: "base1", Number: "24", Artist: "Ken Sugimori", Rarity: "Uncommon", Image: "https://images.example/base1-24.png",
	}
	card.Prices.Normal.Low = &low
	card.Prices.ReverseHolofoil.Market = &market
	var none *float64

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cards (id, name, supertype`)).
		WithArgs("base1-24", "Charmeleon", "Pokémon", "Stage 1", "80", []string{}, card.EvolvesFrom, card.EvolvesTo,
			"base1", "24", "Ken Sugimori", "Uncommon", "https://images.example/base1-24.png",
			&low, none, none, none,
			none, none, none, none,
			none, none, none, &market).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Upsert(context.Background(), card))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Contains(t, *last, "ON CONFLICT (id) DO UPDATE SET")
	assert.Equal(t, []string{
		"normal_low_price", "normal_mid_price", "normal_high_price", "normal_market_val",
		"holofoil_low_price", "holofoil_mid_price", "holofoil_high_price", "holofoil_market_val",
		"reverse_holofoil_low_price", "reverse_holofoil_mid_price", "reverse_holofoil_high_price", "reverse_holofoil_market_val",
		"updated_at",
	}, updatedColumns(*last))
}

func TestVerificationRepository_UpsertReplacesCodeForEmail(t *testing.T) {
	mock, last := recordingMock(t)
	repo := NewVerificationRepository(mock)
	expires := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	created := expires.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO email_verification_tokens`)).
		WithArgs(testUserID, "ash@pallet.town", "654321", expires).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("tok-1", created))

	tok := &entity.EmailVerificationToken{UserID: testUserID, Email: "Ash@Pallet.Town", Token: "654321", Expires: expires}
	require.NoError(t, repo.Upsert(context.Background(), tok))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "tok-1", tok.ID)
	assert.Equal(t, "ash@pallet.town", tok.Email)
	assert.Contains(t, *last, "ON CONFLICT (email) DO UPDATE SET")
	assert.Equal(t, []string{"token", "expires"}, updatedColumns(*last))
}

func TestSetRepository_Upsert(t *testing.T) {
	mock := newMock(t)
	repo := NewSetRepository(mock)
	release := time.Date(1999, 1, 9, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (id) DO UPDATE SET`)).
		WithArgs("base1", "Base", "Base", release, 102, "sym", "logo").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Upsert(context.Background(), &entity.Set{ID: "base1", Name: "Base", Series: "Base", ReleaseDate: release, Total: 102, SymbolImage: "sym", LogoImage: "logo"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCardRepository_CreateFormatsPrice(t *testing.T) {
	mock := newMock(t)
	repo := NewUserCardRepository(mock)
	now := time.Now()
	price := decimal.RequireFromString("12.5")

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO user_cards`)).
		WithArgs(testUserID, "base1-4", "NM", true, "12.50", "first edition").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("uc-1", now, now))

	uc := &entity.UserCard{UserID: testUserID, CardID: "base1-4", Quality: "NM", ForSale: true, Price: &price, Notes: "first edition"}
	require.NoError(t, repo.Create(context.Background(), uc))
	assert.Equal(t, "uc-1", uc.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCardRepository_ListByUser(t *testing.T) {
	mock := newMock(t)
	repo := NewUserCardRepository(mock)
	now := time.Now()

	cols := append([]string{"id", "user_id", "card_id", "quality", "for_sale", "price", "notes", "created_at", "updated_at", "seller"}, cardColumnNames()...)
	vals := append([]any{"uc-1", testUserID, "base1-4", "LP", false, strPtr("99.99"), "", now, now, "Ash"}, cardRowValues("base1-4", now, nil)...)

	mock.ExpectQuery(regexp.QuoteMeta(`uc.user_id = $1 ORDER BY uc.created_at DESC`)).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(vals...))

	list, err := repo.ListByUser(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "99.99", list[0].Price.String())
	assert.Equal(t, "Ash", list[0].SellerName)
	require.NotNil(t, list[0].Card)
	assert.Equal(t, "Charizard", list[0].Card.Name)
	assert.Equal(t, "base1", list[0].Card.Set.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCardRepository_DeleteScopedToOwner(t *testing.T) {
	mock := newMock(t)
	repo := NewUserCardRepository(mock)
	id := "6f1d2c3b-4a5e-4f60-8a7b-9c0d1e2f3a4b"

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user_cards WHERE id = $1 AND user_id = $2`)).
		WithArgs(id, testUserID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), id, testUserID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMapErr(t *testing.T) {
	assert.Nil(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23505"}), repository.ErrConflict)
	other := fmt.Errorf("boom")
	assert.Equal(t, other, mapErr(other))
}
