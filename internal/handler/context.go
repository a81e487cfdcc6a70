package handler

import (
	"net/http"

	"github.com/kruchat2026/devlog/internal/domain"
	"github.com/kruchat2026/devlog/internal/session"
)

type ContextKey string

var (
	SessionCtxKey ContextKey = "session"
	RecordCtxKey  ContextKey = "record"
)

// currentSession returns nil for anonymous visitors.
func currentSession(r *http.Request) *session.Session {
	s, _ := r.Context().Value(SessionCtxKey).(*session.Session)
	return s
}

func currentUser(r *http.Request) *domain.User {
	if s := currentSession(r); s != nil {
		return s.User
	}
	return nil
}

func currentRecord(r *http.Request) *domain.Record {
	rec, _ := r.Context().Value(RecordCtxKey).(*domain.Record)
	return rec
}
