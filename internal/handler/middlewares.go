package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kruchat2026/devlog/internal/apiclient"
	"github.com/kruchat2026/devlog/internal/domain"
	"github.com/kruchat2026/devlog/internal/metrics"
	"github.com/kruchat2026/devlog/internal/service"
	"github.com/kruchat2026/devlog/internal/session"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rw.StatusCode)).Inc()
		h.logger.Info().
			Int("status", rw.StatusCode).
			Str("ip", r.RemoteAddr).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.logger.Error().Str("stack", string(debug.Stack())).Msg("panic recovered")
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// session restores the visitor's session, if any, and attaches the cached
// email to the context so remote calls carry it.
func (h *Handler) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := h.sessions.Restore(r.Context(), r)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				h.internalServerError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), SessionCtxKey, s)
		ctx = apiclient.WithEmail(ctx, s.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := currentSession(r)
		if s == nil || s.User == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if msg := inactiveMessage(s.User); msg != "" {
			if err := h.sessions.End(r.Context(), w, s); err != nil {
				h.logger.Warn().Err(err).Msg("failed to clear session")
			}
			r = r.WithContext(context.WithValue(r.Context(), SessionCtxKey, (*session.Session)(nil)))
			h.render(w, r, http.StatusForbidden, "login", "เข้าสู่ระบบ", "", loginPage{Error: msg})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func inactiveMessage(u *domain.User) string {
	switch u.Status {
	case domain.UserActive:
		return ""
	case domain.UserPending:
		return "บัญชีของคุณรอการอนุมัติจากผู้ดูแลระบบ"
	default:
		return "บัญชีของคุณถูกระงับการใช้งาน กรุณาติดต่อผู้ดูแลระบบ"
	}
}

func (h *Handler) RequiredView(view domain.View) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := currentUser(r)
			if user == nil || !domain.CanView(user.Role, view) {
				h.forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// record loads the record named in the URL from the caller's own list.
func (h *Handler) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		rec, err := h.records.Find(r.Context(), currentUser(r), id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrRecordNotFound):
				h.flash(r, session.FlashError, err.Error())
				h.redirect(w, r, "/records")
			default:
				h.remoteError(w, r, "/records", err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), RecordCtxKey, rec)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) preventOperateSelf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sameEmail(targetEmail(r), currentUser(r).Email) {
			h.flash(r, session.FlashError, service.ErrSelfAction.Error())
			h.redirect(w, r, "/users")
			return
		}
		next.ServeHTTP(w, r)
	})
}
