// Package session tracks who is logged in and logs them out after a
// period of inactivity.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"nutrivision-go/internal/apperr"
)

// DefaultIdle is the inactivity threshold after which a session ends.
const DefaultIdle = 30 * time.Minute

type Session struct {
	ID         string    `json:"id"`
	UserID     uint      `json:"user_id"`
	LastActive time.Time `json:"last_active"`
}

// Store keeps sessions by id. Get returns apperr.ErrNotFound for unknown ids.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

type Controller struct {
	store Store
	codec *TokenCodec
	idle  time.Duration
	log   *logrus.Logger
	now   func() time.Time
}

func NewController(store Store, codec *TokenCodec, idle time.Duration, log *logrus.Logger) *Controller {
	if idle <= 0 {
		idle = DefaultIdle
	}
	return &Controller{store: store, codec: codec, idle: idle, log: log, now: time.Now}
}

// Begin opens a session for an authenticated user and returns its bearer token.
func (c *Controller) Begin(ctx context.Context, userID uint) (string, error) {
	s := &Session{ID: uuid.NewString(), UserID: userID, LastActive: c.now()}
	if err := c.store.Put(ctx, s); err != nil {
		return "", errors.Wrap(err, "store session")
	}
	token, err := c.codec.Encode(s.ID)
	if err != nil {
		return "", err
	}
	c.log.WithField("user_id", userID).Debug("session started")
	return token, nil
}

// Resume validates a token on user activity. A session idle for longer than
// the threshold is ended and apperr.ErrSessionExpired returned; otherwise
// its last activity is moved to now.
func (c *Controller) Resume(ctx context.Context, token string) (*Session, error) {
	id, err := c.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	s, err := c.store.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}

	now := c.now()
	if now.Sub(s.LastActive) > c.idle {
		if err := c.store.Delete(ctx, id); err != nil {
			c.log.WithError(err).Warn("failed to drop expired session")
		}
		c.log.WithField("user_id", s.UserID).Info("session expired due to inactivity")
		return nil, apperr.ErrSessionExpired
	}

	s.LastActive = now
	if err := c.store.Put(ctx, s); err != nil {
		return nil, errors.Wrap(err, "touch session")
	}
	return s, nil
}

// End logs the session out. Ending an unknown session is not an error.
func (c *Controller) End(ctx context.Context, token string) error {
	id, err := c.codec.Decode(token)
	if err != nil {
		return err
	}
	if err := c.store.Delete(ctx, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return errors.Wrap(err, "delete session")
	}
	return nil
}
