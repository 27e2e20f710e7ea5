package credentials

import (
	"context"
	"crypto/subtle"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"nutrivision-go/internal/apperr"
	"nutrivision-go/internal/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	SetResetToken(ctx context.Context, userID uint, token string) error
	ResetPassword(ctx context.Context, userID uint, token, passwordHash string) error
}

type Service struct {
	users    Repository
	delivery ResetDelivery
	log      *logrus.Logger
	cost     int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(users Repository, delivery ResetDelivery, log *logrus.Logger) *Service {
	if delivery == nil {
		delivery = InlineDelivery{}
	}
	return &Service{users: users, delivery: delivery, log: log, cost: bcrypt.DefaultCost}
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(h), nil
}

func (s *Service) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if err := validateSignup(email, username, password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Duplicate("email")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, apperr.Duplicate("username")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: email, Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Authenticate returns apperr.ErrUnauthenticated for both unknown
// identifiers and wrong passwords.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		// Burn the same bcrypt work as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, apperr.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrUnauthenticated
	}
	return user, nil
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.cost)
	})
	return s.dummyHash
}

// BeginPasswordReset issues a new token for the account and hands it to the
// configured delivery. The returned string is whatever the delivery chose to
// surface to the requester.
func (s *Service) BeginPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	if err := s.users.SetResetToken(ctx, user.ID, token); err != nil {
		return "", err
	}

	surfaced, err := s.delivery.Deliver(ctx, user.Email, token)
	if err != nil {
		return "", err
	}
	s.log.WithField("user_id", user.ID).Info("password reset token issued")
	return surfaced, nil
}

// CompletePasswordReset consumes the token. A token works exactly once.
func (s *Service) CompletePasswordReset(ctx context.Context, email, token, newPassword string) error {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if user.ResetToken == nil || token == "" ||
		subtle.ConstantTimeCompare([]byte(*user.ResetToken), []byte(token)) != 1 {
		return apperr.ErrInvalidToken
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.ResetPassword(ctx, user.ID, token, hash); err != nil {
		return err
	}
	s.log.WithField("user_id", user.ID).Info("password reset completed")
	return nil
}
