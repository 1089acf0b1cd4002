package application

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
	"github.com/pokebase/pokebase-api/internal/infrastructure/tcgapi"
	"github.com/pokebase/pokebase-api/pkg/mailer"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, u *entity.User) error {
	args := m.Called(ctx, u)
	if u.ID == "" {
		u.ID = "u-new"
	}
	return args.Error(0)
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUsers) Update(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUsers) MarkVerified(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockUsers) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) GetByProvider(ctx context.Context, provider, pid string) (*entity.Account, error) {
	args := m.Called(ctx, provider, pid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Account), args.Error(1)
}

func (m *mockAccounts) Create(ctx context.Context, a *entity.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAccounts) CreateWithUser(ctx context.Context, u *entity.User, a *entity.Account) error {
	args := m.Called(ctx, u, a)
	u.ID = "u-oauth"
	a.UserID = u.ID
	return args.Error(0)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) Upsert(ctx context.Context, t *entity.EmailVerificationToken) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTokens) Find(ctx context.Context, email, token string) (*entity.EmailVerificationToken, error) {
	args := m.Called(ctx, email, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.EmailVerificationToken), args.Error(1)
}

func (m *mockTokens) Confirm(ctx context.Context, t *entity.EmailVerificationToken, at time.Time) (*entity.User, error) {
	args := m.Called(ctx, t, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Dispatch(ctx context.Context, job mailer.EmailJob) error {
	return m.Called(ctx, job).Error(0)
}

type mockStore struct{ mock.Mock }

func (m *mockStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, objectPath, contentType, r)
	return args.String(0), args.Error(1)
}

type mockSets struct{ mock.Mock }

func (m *mockSets) Upsert(ctx context.Context, s *entity.Set) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSets) GetByID(ctx context.Context, id string) (*entity.Set, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Set), args.Error(1)
}

func (m *mockSets) List(ctx context.Context) ([]entity.Set, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Set), args.Error(1)
}

type mockCards struct{ mock.Mock }

func (m *mockCards) Upsert(ctx context.Context, c *entity.Card) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCards) GetByID(ctx context.Context, id string) (*entity.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Card), args.Error(1)
}

func (m *mockCards) ListBySet(ctx context.Context, setID string) ([]entity.Card, error) {
	args := m.Called(ctx, setID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Card), args.Error(1)
}

func (m *mockCards) Search(ctx context.Context, terms []string) ([]entity.Card, error) {
	args := m.Called(ctx, terms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Card), args.Error(1)
}

func (m *mockCards) ListByIDs(ctx context.Context, ids []string) ([]entity.Card, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Card), args.Error(1)
}

type mockUserCards struct{ mock.Mock }

func (m *mockUserCards) Create(ctx context.Context, uc *entity.UserCard) error {
	args := m.Called(ctx, uc)
	uc.ID = "uc-new"
	return args.Error(0)
}

func (m *mockUserCards) GetByID(ctx context.Context, id, userID string) (*entity.UserCard, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserCard), args.Error(1)
}

func (m *mockUserCards) ListByUser(ctx context.Context, userID string) ([]entity.UserCard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserCard), args.Error(1)
}

func (m *mockUserCards) ListForSale(ctx context.Context) ([]entity.UserCard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserCard), args.Error(1)
}

func (m *mockUserCards) CountByUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockUserCards) Update(ctx context.Context, uc *entity.UserCard) error {
	return m.Called(ctx, uc).Error(0)
}

func (m *mockUserCards) Delete(ctx context.Context, id, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

type mockIndex struct{ mock.Mock }

func (m *mockIndex) IndexCards(ctx context.Context, cards []entity.Card) error {
	return m.Called(ctx, cards).Error(0)
}

func (m *mockIndex) Search(ctx context.Context, terms []string) ([]string, error) {
	args := m.Called(ctx, terms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockSource struct{ mock.Mock }

func (m *mockSource) AllSets(ctx context.Context) ([]tcgapi.Set, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tcgapi.Set), args.Error(1)
}

func (m *mockSource) AllCards(ctx context.Context) ([]tcgapi.Card, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tcgapi.Card), args.Error(1)
}

func (m *mockSource) SearchCards(ctx context.Context, query string) ([]tcgapi.Card, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tcgapi.Card), args.Error(1)
}
