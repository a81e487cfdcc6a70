package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kruchat2026/devlog/internal/domain"
	"github.com/kruchat2026/devlog/internal/service"
	"github.com/kruchat2026/devlog/internal/session"
)

type usersPage struct {
	Tab   string
	Users []*domain.User
	// counts for the tab badges
	PendingCount int
	OthersCount  int
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := usersPage{
		Tab:          "all",
		Users:        list.Others,
		PendingCount: len(list.Pending),
		OthersCount:  len(list.Others),
	}
	if r.URL.Query().Get("tab") == "pending" {
		data.Tab = "pending"
		data.Users = list.Pending
	}
	h.render(w, r, http.StatusOK, "users", "จัดการผู้ใช้", domain.ViewUsers, data)
}

func targetEmail(r *http.Request) string {
	if r.Method == http.MethodGet {
		return strings.TrimSpace(r.URL.Query().Get("email"))
	}
	return strings.TrimSpace(r.PostFormValue("email"))
}

var userActionPrompts = map[string]string{
	"role":   "ต้องการเปลี่ยนสิทธิ์ของ %s ใช่หรือไม่?",
	"status": "ต้องการเปลี่ยนสถานะของ %s ใช่หรือไม่?",
	"delete": "ต้องการลบบัญชี %s อย่างถาวรใช่หรือไม่? การลบไม่สามารถย้อนกลับได้",
}

// ConfirmUserAction is the confirmation step. It makes no remote call.
func (h *Handler) ConfirmUserAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	email := targetEmail(r)
	if email == "" {
		h.redirect(w, r, "/users")
		return
	}

	h.render(w, r, http.StatusOK, "confirm", "ยืนยันการดำเนินการ", domain.ViewUsers, confirmPage{
		Message: fmt.Sprintf(userActionPrompts[action], email),
		Action:  "/users/" + action,
		Cancel:  "/users",
		Danger:  action == "delete",
		Fields:  map[string]string{"email": email},
	})
}

func (h *Handler) UserAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := currentUser(r)
	email := targetEmail(r)
	confirmed := r.PostFormValue("confirm") == "yes"

	var (
		msg string
		err error
	)
	switch chi.URLParam(r, "action") {
	case "role":
		var role domain.Role
		role, err = h.users.ToggleRole(ctx, actor, email, confirmed)
		msg = fmt.Sprintf("เปลี่ยนสิทธิ์ของ %s เป็น%sแล้ว", email, role.Label())
	case "status":
		var status domain.UserStatus
		status, err = h.users.ToggleStatus(ctx, actor, email, confirmed)
		msg = fmt.Sprintf("เปลี่ยนสถานะของ %s เป็น%sแล้ว", email, status.Label())
	case "delete":
		err = h.users.Delete(ctx, actor, email, confirmed)
		msg = fmt.Sprintf("ลบบัญชี %s แล้ว", email)
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotConfirmed):
			h.redirect(w, r, "/users")
		case errors.Is(err, service.ErrSelfAction),
			errors.Is(err, service.ErrPendingUser),
			errors.Is(err, service.ErrUserNotFound),
			errors.Is(err, service.ErrForbidden):
			h.flash(r, session.FlashError, err.Error())
			h.redirect(w, r, "/users")
		default:
			h.remoteError(w, r, "/users", err)
		}
		return
	}

	h.flash(r, session.FlashSuccess, msg)
	h.redirect(w, r, "/users")
}
