// Package service implements the business operations behind the handlers:
// user onboarding, invoice finalization and Stars payment bookkeeping.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/mkalvans/invoicebot/internal/repository"
	"github.com/mkalvans/invoicebot/internal/telegram"
)

type UserService struct {
	queries *repository.Queries
	ops     *telegram.OpsLogger
}

func NewUserService(q *repository.Queries, ops *telegram.OpsLogger) *UserService {
	return &UserService{queries: q, ops: ops}
}

// FindOrCreate resolves the Telegram sender to a stored user, registering
// them on first contact.
func (s *UserService) FindOrCreate(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, err := s.queries.GetUserByTelegramID(ctx, telegramID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user, err = s.queries.CreateUser(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	s.ops.Registration(ctx, user.ID, telegramID)
	return user, nil
}

// SaveProfile persists the company profile collected by the setup wizard.
func (s *UserService) SaveProfile(ctx context.Context, user *domain.User) error {
	return s.queries.UpdateUserProfile(ctx, user)
}
