package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/config"
	"github.com/pokebase/pokebase-api/internal/domain/entity"
	repo "github.com/pokebase/pokebase-api/internal/domain/repository"
	"github.com/pokebase/pokebase-api/internal/infrastructure/oauth"
	"github.com/pokebase/pokebase-api/pkg/helpers"
	"github.com/pokebase/pokebase-api/pkg/mailer"
	mailtpl "github.com/pokebase/pokebase-api/pkg/mailer/templates"
)

type AuthService struct {
	Users    repo.UserRepository
	Accounts repo.AccountRepository
	Tokens   repo.VerificationRepository
	JWT      *helpers.JWTManager
	Sessions *SessionStore
	Mail     Mailer
	Cfg      *config.Config
	Logger   *logrus.Logger
	Now      func() time.Time
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func NewAuthService(users repo.UserRepository, accounts repo.AccountRepository, tokens repo.VerificationRepository,
	jwt *helpers.JWTManager, sessions *SessionStore, mail Mailer, cfg *config.Config, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Users:    users,
		Accounts: accounts,
		Tokens:   tokens,
		JWT:      jwt,
		Sessions: sessions,
		Mail:     mail,
		Cfg:      cfg,
		Logger:   logger,
		Now:      time.Now,
	}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Signup creates an unverified user and mails the first verification code.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Name: strings.TrimSpace(in.Name), Email: email, Password: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user created")
	}
	if err := s.issueCode(ctx, u); err != nil {
		return u, err
	}
	return u, nil
}

// ResendVerification replaces any pending code for the email with a new one.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u.IsVerified() {
		return ErrAlreadyVerified
	}
	return s.issueCode(ctx, u)
}

func (s *AuthService) issueCode(ctx context.Context, u *entity.User) error {
	code, err := helpers.GenOTPCode(s.Cfg.VerificationCodeLength)
	if err != nil {
		return err
	}
	tok := &entity.EmailVerificationToken{
		UserID:  u.ID,
		Email:   u.Email,
		Token:   code,
		Expires: s.Now().Add(s.Cfg.VerificationCodeTTL),
	}
	if err := s.Tokens.Upsert(ctx, tok); err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}

	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.VerificationCode,
		Data:     mailtpl.NewVerificationCodeData(s.Cfg, u.Name, u.Email, code),
	}
	if err := s.Mail.Dispatch(ctx, job); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("verification email dispatch failed")
		}
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}
	return nil
}

// VerifyOTP confirms a pending code and signs the user in.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*entity.User, TokenPair, error) {
	tok, err := s.Tokens.Find(ctx, email, code)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, TokenPair{}, ErrVerificationNotFound
		}
		return nil, TokenPair{}, err
	}
	now := s.Now()
	if tok.Expired(now) {
		return nil, TokenPair{}, ErrVerificationExpired
	}
	u, err := s.Tokens.Confirm(ctx, tok, now)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *AuthService) CheckVerified(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// CurrentUser loads the user behind an authenticated session.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Authenticate validates email/password and returns the user without issuing tokens.
// Password users must have verified their email.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.HasPassword() || !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsVerified() {
		return nil, ErrEmailNotVerified
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.sign(u, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		}
		return TokenPair{}, err
	}
	if err := s.Sessions.Put(ctx, u, sid); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session store failed")
	}
	return pair, nil
}

func (s *AuthService) sign(u *entity.User, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid, u.IsVerified())
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the session id and both tokens. With a session store the
// refresh token must carry the current session id.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if s.Sessions.Enabled() {
		sess, err := s.Sessions.Get(ctx, u.ID)
		if err != nil || sess.SessionID != claims.SessionID {
			return TokenPair{}, ErrInvalidCredentials
		}
	}
	sid := uuid.NewString()
	pair, err := s.sign(u, sid)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.Sessions.Rotate(ctx, u.ID, sid); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session rotate failed")
	}
	_ = s.Sessions.Refresh(ctx, u)
	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.Sessions.Delete(ctx, userID)
}

// SignInWithOAuth links or creates the local user for a provider identity.
// Provider sign-in always counts as a verified email.
func (s *AuthService) SignInWithOAuth(ctx context.Context, id *oauth.Identity) (*entity.User, TokenPair, error) {
	now := s.Now()
	acct := &entity.Account{
		Type:              id.Type,
		Provider:          id.Provider,
		ProviderAccountID: id.ProviderAccountID,
		RefreshToken:      id.RefreshToken,
		AccessToken:       id.AccessToken,
		ExpiresAt:         id.ExpiresAt,
		TokenType:         id.TokenType,
		Scope:             id.Scope,
		IDToken:           id.IDToken,
	}

	u, err := s.Users.GetByEmail(ctx, id.Email)
	switch {
	case err == nil:
		if err := s.linkExisting(ctx, u, acct, id, now); err != nil {
			return nil, TokenPair{}, err
		}
	case errors.Is(err, repo.ErrNotFound):
		u = &entity.User{
			Email:         strings.ToLower(id.Email),
			Name:          oauthDisplayName(id),
			Image:         id.Image,
			EmailVerified: &now,
		}
		if err := s.Accounts.CreateWithUser(ctx, u, acct); err != nil {
			return nil, TokenPair{}, fmt.Errorf("create oauth user: %w", err)
		}
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "provider": id.Provider}).Info("user created via oauth")
		}
	default:
		return nil, TokenPair{}, err
	}

	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *AuthService) linkExisting(ctx context.Context, u *entity.User, acct *entity.Account, id *oauth.Identity, now time.Time) error {
	if _, err := s.Accounts.GetByProvider(ctx, id.Provider, id.ProviderAccountID); errors.Is(err, repo.ErrNotFound) {
		acct.UserID = u.ID
		if err := s.Accounts.Create(ctx, acct); err != nil {
			return fmt.Errorf("link account: %w", err)
		}
	} else if err != nil {
		return err
	}

	if err := s.Users.MarkVerified(ctx, u.ID, now); err != nil {
		return err
	}
	u.EmailVerified = &now

	changed := false
	if u.Name == "" && id.Name != "" {
		u.Name, changed = id.Name, true
	}
	if u.Image == "" && id.Image != "" {
		u.Image, changed = id.Image, true
	}
	if changed {
		return s.Users.Update(ctx, u)
	}
	return nil
}

func oauthDisplayName(id *oauth.Identity) string {
	if n := strings.TrimSpace(id.Name); n != "" {
		return n
	}
	if local, _, ok := strings.Cut(id.Email, "@"); ok && local != "" {
		return local
	}
	return "User"
}
