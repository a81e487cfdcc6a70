package apiclient

import "context"

type contextKey string

const emailCtxKey contextKey = "email"

// WithEmail attaches the cached session email so Call can send it to a backend
// that cannot infer the caller on its own.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailCtxKey, email)
}

func EmailFrom(ctx context.Context) string {
	email, _ := ctx.Value(emailCtxKey).(string)
	return email
}
