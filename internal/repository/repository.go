package repository

import (
	"context"

	"github.com/kruchat2026/devlog/internal/apiclient"
)

// Caller is satisfied by *apiclient.Client.
type Caller interface {
	Call(ctx context.Context, action string, payload apiclient.Payload) apiclient.Result
}

// Repository maps the remote actions onto typed operations. Failed calls come
// back as *apiclient.Error.
type Repository struct {
	client Caller
}

func NewRepository(client Caller) *Repository {
	return &Repository{
		client: client,
	}
}

func (r *Repository) call(ctx context.Context, action string, payload apiclient.Payload, dst any) error {
	res := r.client.Call(ctx, action, payload)
	if err := res.Err(); err != nil {
		return err
	}
	if dst == nil {
		return nil
	}
	return res.Decode(dst)
}
