package handlers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
	repo "github.com/pokebase/pokebase-api/internal/domain/repository"
	"github.com/pokebase/pokebase-api/pkg/mailer"
)

// In-memory repositories, enough to drive the handlers end to end.

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*entity.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*entity.User{}} }

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if x.Email == u.Email {
			return repo.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) MarkVerified(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.EmailVerified = &at
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

type memAccounts struct{}

func (memAccounts) GetByProvider(context.Context, string, string) (*entity.Account, error) {
	return nil, repo.ErrNotFound
}
func (memAccounts) Create(context.Context, *entity.Account) error { return nil }
func (memAccounts) CreateWithUser(context.Context, *entity.User, *entity.Account) error {
	return nil
}

type memTokens struct {
	mu      sync.Mutex
	users   *memUsers
	byEmail map[string]*entity.EmailVerificationToken
}

func newMemTokens(users *memUsers) *memTokens {
	return &memTokens{users: users, byEmail: map[string]*entity.EmailVerificationToken{}}
}

func (m *memTokens) Upsert(_ context.Context, t *entity.EmailVerificationToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.byEmail[t.Email] = &cp
	return nil
}

func (m *memTokens) Find(_ context.Context, email, token string) (*entity.EmailVerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byEmail[email]
	if !ok || t.Token != token {
		return nil, repo.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTokens) Confirm(ctx context.Context, t *entity.EmailVerificationToken, at time.Time) (*entity.User, error) {
	if err := m.users.MarkVerified(ctx, t.UserID, at); err != nil {
		return nil, err
	}
	m.mu.Lock()
	delete(m.byEmail, t.Email)
	m.mu.Unlock()
	return m.users.GetByID(ctx, t.UserID)
}

func (m *memTokens) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.byEmail[email]; ok {
		return t.Token
	}
	return ""
}

type memCards struct {
	sets  map[string]entity.Set
	cards map[string]entity.Card
}

func newMemCatalog() *memCards {
	base := entity.Set{ID: "base1", Name: "Base", Series: "Base", Total: 102}
	return &memCards{
		sets: map[string]entity.Set{base.ID: base},
		cards: map[string]entity.Card{
			"base1-4":  {ID: "base1-4", Name: "Charizard", SetID: "base1", SetName: "Base", Number: "4"},
			"base1-58": {ID: "base1-58", Name: "Pikachu", SetID: "base1", SetName: "Base", Number: "58"},
		},
	}
}

func (m *memCards) Upsert(context.Context, *entity.Card) error { return nil }

func (m *memCards) GetByID(_ context.Context, id string) (*entity.Card, error) {
	c, ok := m.cards[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &c, nil
}

func (m *memCards) ListBySet(_ context.Context, setID string) ([]entity.Card, error) {
	var out []entity.Card
	for _, c := range m.cards {
		if c.SetID == setID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCards) Search(_ context.Context, terms []string) ([]entity.Card, error) {
	var out []entity.Card
	for _, c := range m.cards {
		hay := strings.ToLower(c.Name + " " + c.Number + " " + c.SetName)
		match := true
		for _, t := range terms {
			if !strings.Contains(hay, t) {
				match = false
				break
			}
		}
		if match {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCards) ListByIDs(_ context.Context, ids []string) ([]entity.Card, error) {
	out := make([]entity.Card, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.cards[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type memSets struct{ cat *memCards }

func (m memSets) Upsert(context.Context, *entity.Set) error { return nil }

func (m memSets) GetByID(_ context.Context, id string) (*entity.Set, error) {
	s, ok := m.cat.sets[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &s, nil
}

func (m memSets) List(context.Context) ([]entity.Set, error) {
	out := make([]entity.Set, 0, len(m.cat.sets))
	for _, s := range m.cat.sets {
		out = append(out, s)
	}
	return out, nil
}

type memUserCards struct {
	mu   sync.Mutex
	byID map[string]*entity.UserCard
}

func newMemUserCards() *memUserCards { return &memUserCards{byID: map[string]*entity.UserCard{}} }

func (m *memUserCards) Create(_ context.Context, uc *entity.UserCard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	uc.ID = uuid.NewString()
	cp := *uc
	m.byID[uc.ID] = &cp
	return nil
}

func (m *memUserCards) GetByID(_ context.Context, id, userID string) (*entity.UserCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uc, ok := m.byID[id]
	if !ok || uc.UserID != userID {
		return nil, repo.ErrNotFound
	}
	cp := *uc
	return &cp, nil
}

func (m *memUserCards) ListByUser(_ context.Context, userID string) ([]entity.UserCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.UserCard
	for _, uc := range m.byID {
		if uc.UserID == userID {
			out = append(out, *uc)
		}
	}
	return out, nil
}

func (m *memUserCards) ListForSale(_ context.Context) ([]entity.UserCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.UserCard
	for _, uc := range m.byID {
		if uc.ForSale {
			out = append(out, *uc)
		}
	}
	return out, nil
}

func (m *memUserCards) CountByUser(ctx context.Context, userID string) (int, error) {
	list, _ := m.ListByUser(ctx, userID)
	return len(list), nil
}

func (m *memUserCards) Update(_ context.Context, uc *entity.UserCard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[uc.ID]
	if !ok || cur.UserID != uc.UserID {
		return repo.ErrNotFound
	}
	cp := *uc
	m.byID[uc.ID] = &cp
	return nil
}

func (m *memUserCards) Delete(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	uc, ok := m.byID[id]
	if !ok || uc.UserID != userID {
		return repo.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type captureMailer struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (m *captureMailer) Dispatch(_ context.Context, job mailer.EmailJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return m.err
}
