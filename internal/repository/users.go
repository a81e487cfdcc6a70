package repository

import (
	"context"
	"errors"

	"github.com/kruchat2026/devlog/internal/apiclient"
	"github.com/kruchat2026/devlog/internal/domain"
)

var ErrEmptyUser = errors.New("ไม่พบข้อมูลผู้ใช้")

type UserUpdates struct {
	Role   *domain.Role       `json:"role,omitempty"`
	Status *domain.UserStatus `json:"status,omitempty"`
}

func (r *Repository) GetMe(ctx context.Context) (*domain.User, error) {
	user := &domain.User{}
	if err := r.call(ctx, apiclient.ActionGetMe, nil, user); err != nil {
		return nil, err
	}
	if user.Email == "" {
		return nil, ErrEmptyUser
	}
	return user, nil
}

func (r *Repository) LoginUser(ctx context.Context, email, password string) (*domain.User, error) {
	user := &domain.User{}
	payload := apiclient.Payload{"email": email, "password": password}
	if err := r.call(ctx, apiclient.ActionLoginUser, payload, user); err != nil {
		return nil, err
	}
	if user.Email == "" {
		return nil, ErrEmptyUser
	}
	return user, nil
}

func (r *Repository) RegisterUser(ctx context.Context, email, name, password string) error {
	payload := apiclient.Payload{"email": email, "name": name, "password": password}
	return r.call(ctx, apiclient.ActionRegisterUser, payload, nil)
}

func (r *Repository) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	users := []*domain.User{}
	if err := r.call(ctx, apiclient.ActionGetUsers, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Repository) UpdateUser(ctx context.Context, targetEmail string, updates UserUpdates) error {
	payload := apiclient.Payload{"targetEmail": targetEmail, "updates": updates}
	return r.call(ctx, apiclient.ActionUpdateUser, payload, nil)
}

func (r *Repository) DeleteUser(ctx context.Context, targetEmail string) error {
	return r.call(ctx, apiclient.ActionDeleteUser, apiclient.Payload{"targetEmail": targetEmail}, nil)
}
