package user

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ServiceInterface is what other features need to know about the buyer.
type ServiceInterface interface {
	Resolve(ctx context.Context, s Session) (Session, error)
}

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Resolve completes a session from the stored profile. A missing or corrupt
// profile leaves the session as the claims describe it.
func (s *Service) Resolve(ctx context.Context, sess Session) (Session, error) {
	if sess.Name != "" && sess.Email != "" {
		return sess, nil
	}
	p, err := s.repo.GetProfile(ctx, sess.Owner())
	switch {
	case errors.Is(err, ErrNotFound):
		return sess, nil
	case errors.Is(err, ErrProfileCorrupt):
		s.log.Warn("ignoring corrupt user profile", zap.String("owner", sess.Owner()), zap.Error(err))
		return sess, nil
	case err != nil:
		return Session{}, err
	}
	return sess.Merge(p), nil
}
