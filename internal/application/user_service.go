package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
	repo "github.com/pokebase/pokebase-api/internal/domain/repository"
)

// UserService owns the signed-in user's profile.
type UserService struct {
	Users     repo.UserRepository
	UserCards repo.UserCardRepository
	Sessions  *SessionStore
	Store     ObjectStore
	Logger    *logrus.Logger
}

func NewUserService(users repo.UserRepository, userCards repo.UserCardRepository, sessions *SessionStore, store ObjectStore, logger *logrus.Logger) *UserService {
	return &UserService{
		Users:     users,
		UserCards: userCards,
		Sessions:  sessions,
		Store:     store,
		Logger:    logger,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfileInput fields left empty keep their current value.
type UpdateProfileInput struct {
	Name  string
	Email string
	Image string
}

// UpdateProfile keeps the session hash in sync, preserving its TTL.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		u.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" && email != u.Email {
		other, err := s.Users.GetByEmail(ctx, email)
		switch {
		case err == nil && other.ID != u.ID:
			return nil, ErrEmailTaken
		case err != nil && !errors.Is(err, repo.ErrNotFound):
			return nil, err
		}
		u.Email = email
	}
	if in.Image != "" {
		u.Image = in.Image
	}

	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrEmailTaken
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.refreshSession(ctx, u)
	return u, nil
}

// DeleteAccount removes the user; accounts, tokens and cards cascade.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.Users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.Sessions.Delete(ctx, userID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session delete failed")
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", userID).Info("user deleted")
	}
	return nil
}

// UploadAvatar stores the image under avatars/<user>/ and saves its URL as the profile image.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.Store == nil {
		return "", ErrNotConfigured
	}
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := s.Store.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("object", objectPath).Error("avatar upload failed")
		}
		return "", err
	}
	u.Image = url
	if err := s.Users.Update(ctx, u); err != nil {
		return "", err
	}
	s.refreshSession(ctx, u)
	return url, nil
}

func (s *UserService) refreshSession(ctx context.Context, u *entity.User) {
	if err := s.Sessions.Refresh(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session refresh failed")
	}
}

type PublicProfile struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Image          string    `json:"image"`
	CollectionSize int       `json:"collection_size"`
	MemberSince    time.Time `json:"member_since"`
}

func (s *UserService) PublicProfile(ctx context.Context, userID string) (*PublicProfile, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	n, err := s.UserCards.CountByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{ID: u.ID, Name: u.Name, Image: u.Image, CollectionSize: n, MemberSince: u.CreatedAt}, nil
}
