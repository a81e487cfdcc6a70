package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kruchat2026/devlog/internal/domain"
	"github.com/kruchat2026/devlog/internal/service"
	"github.com/kruchat2026/devlog/internal/session"
)

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.reviewer.Pending(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "review", "รายการรอตรวจ", domain.ViewReview, pending)
}

func (h *Handler) ApproveRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.reviewer.Approve(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.reviewError(w, r, err)
		return
	}
	h.flash(r, session.FlashSuccess, "อนุมัติบันทึกเรียบร้อยแล้ว")
	h.redirect(w, r, "/review")
}

type rejectPage struct {
	RecordID string
	Title    string
}

// RejectPrompt asks for the optional comment. It makes no remote call; the
// title shown comes from the link.
func (h *Handler) RejectPrompt(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "reject", "ไม่อนุมัติบันทึก", domain.ViewReview, rejectPage{
		RecordID: chi.URLParam(r, "id"),
		Title:    r.URL.Query().Get("title"),
	})
}

func (h *Handler) RejectRecord(w http.ResponseWriter, r *http.Request) {
	var comment *string
	if r.PostFormValue("cancel") == "" {
		c := r.PostFormValue("comment")
		comment = &c
	}

	if err := h.reviewer.Reject(r.Context(), chi.URLParam(r, "id"), comment); err != nil {
		h.reviewError(w, r, err)
		return
	}
	h.flash(r, session.FlashSuccess, "ส่งผลไม่อนุมัติเรียบร้อยแล้ว")
	h.redirect(w, r, "/review")
}

func (h *Handler) reviewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrPromptCancelled):
		h.redirect(w, r, "/review")
	case errors.Is(err, service.ErrRecordNotFound):
		h.flash(r, session.FlashError, "บันทึกนี้ไม่อยู่ในรายการรอตรวจแล้ว")
		h.redirect(w, r, "/review")
	default:
		h.remoteError(w, r, "/review", err)
	}
}
