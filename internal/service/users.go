package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kruchat2026/devlog/internal/domain"
	"github.com/kruchat2026/devlog/internal/repository"
)

type UserStore interface {
	GetAllUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, targetEmail string, updates repository.UserUpdates) error
	DeleteUser(ctx context.Context, targetEmail string) error
}

// UserList is the account list split for the two tabs of the admin page.
type UserList struct {
	Pending []*domain.User
	Others  []*domain.User
}

type UserAdmin struct {
	store    UserStore
	notifier Notifier
	appURL   string
	logger   zerolog.Logger
}

func NewUserAdmin(store UserStore, notifier Notifier, appURL string, logger zerolog.Logger) *UserAdmin {
	return &UserAdmin{
		store:    store,
		notifier: notifier,
		appURL:   appURL,
		logger:   logger.With().Str("component", "user_admin").Logger(),
	}
}

func (s *UserAdmin) List(ctx context.Context) (*UserList, error) {
	users, err := s.store.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	pending, others := domain.PartitionUsers(users)
	return &UserList{Pending: pending, Others: others}, nil
}

// guard rejects acting on one's own account and unconfirmed actions. It never
// touches the network.
func guard(actor *domain.User, targetEmail string, confirmed bool) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrForbidden
	}
	if sameEmail(actor.Email, targetEmail) {
		return ErrSelfAction
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	return nil
}

func (s *UserAdmin) lookup(ctx context.Context, email string) (*domain.User, error) {
	users, err := s.store.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if sameEmail(u.Email, email) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

// ToggleRole flips admin and teacher. Pending accounts must be approved first.
func (s *UserAdmin) ToggleRole(ctx context.Context, actor *domain.User, targetEmail string, confirmed bool) (domain.Role, error) {
	if err := guard(actor, targetEmail, confirmed); err != nil {
		return "", err
	}
	target, err := s.lookup(ctx, targetEmail)
	if err != nil {
		return "", err
	}
	if target.Status == domain.UserPending {
		return "", ErrPendingUser
	}

	role := target.Role.Toggled()
	if err := s.store.UpdateUser(ctx, target.Email, repository.UserUpdates{Role: &role}); err != nil {
		return "", err
	}
	s.logger.Info().Str("target", target.Email).Str("role", string(role)).Str("by", actor.Email).Msg("user role changed")
	return role, nil
}

// ToggleStatus flips active and inactive. A pending account is approved into
// active and its owner is notified.
func (s *UserAdmin) ToggleStatus(ctx context.Context, actor *domain.User, targetEmail string, confirmed bool) (domain.UserStatus, error) {
	if err := guard(actor, targetEmail, confirmed); err != nil {
		return "", err
	}
	target, err := s.lookup(ctx, targetEmail)
	if err != nil {
		return "", err
	}

	status := target.Status.Toggled()
	if err := s.store.UpdateUser(ctx, target.Email, repository.UserUpdates{Status: &status}); err != nil {
		return "", err
	}
	s.logger.Info().Str("target", target.Email).Str("status", string(status)).Str("by", actor.Email).Msg("user status changed")

	if target.Status == domain.UserPending && s.notifier != nil {
		msg := domain.MailMessage{
			Type: domain.MailAccountApproved,
			To:   target.Email,
			Data: domain.AccountApprovedMailData{Name: target.Name, AppURL: s.appURL},
		}
		if err := s.notifier.Publish(ctx, msg); err != nil {
			s.logger.Warn().Err(err).Str("target", target.Email).Msg("failed to publish approval notification")
		}
	}
	return status, nil
}

// Delete removes the account permanently.
func (s *UserAdmin) Delete(ctx context.Context, actor *domain.User, targetEmail string, confirmed bool) error {
	if err := guard(actor, targetEmail, confirmed); err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, targetEmail); err != nil {
		return err
	}
	s.logger.Info().Str("target", targetEmail).Str("by", actor.Email).Msg("user deleted")
	return nil
}
