package handler

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/kruchat2026/devlog/internal/apiclient"
	"github.com/kruchat2026/devlog/internal/domain"
	"github.com/kruchat2026/devlog/internal/session"
	"github.com/kruchat2026/devlog/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"hours": formatHours,
	"selected": func(a, b any) bool {
		return fmt.Sprint(a) == fmt.Sprint(b)
	},
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// parsePages builds one template set per page, each combined with the layout.
func parsePages() (map[string]*template.Template, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := map[string]*template.Template{}
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		if name == "layout" {
			continue
		}
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", file)
		if err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}
	return pages, nil
}

type page struct {
	Title    string
	User     *domain.User
	Nav      []domain.NavItem
	Active   domain.View
	Flashes  []session.Flash
	MockMode bool
	Data     any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, active domain.View, data any) {
	tmpl, ok := h.pages[name]
	if !ok {
		h.logInternalServerError(r, fmt.Errorf("unknown page %q", name))
		http.Error(w, "เกิดข้อผิดพลาดภายในระบบ", http.StatusInternalServerError)
		return
	}

	p := page{
		Title:    title,
		Active:   active,
		MockMode: h.client.MockMode(),
		Data:     data,
	}
	if s := currentSession(r); s != nil && s.User != nil {
		p.User = s.User
		p.Nav = domain.VisibleNav(s.User.Role)
		flashes, err := h.sessions.Store().PopFlashes(r.Context(), s.ID)
		if err != nil {
			h.logger.Warn().Err(err).Msg("failed to read flash messages")
		}
		p.Flashes = flashes
	}

	buf := &bytes.Buffer{}
	if err := tmpl.Execute(buf, p); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "เกิดข้อผิดพลาดภายในระบบ", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	h.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("internal server error")
}

// flash queues an alert for the next page the visitor sees. Anonymous
// visitors have nowhere to keep it.
func (h *Handler) flash(r *http.Request, kind session.FlashKind, msg string) {
	s := currentSession(r)
	if s == nil {
		return
	}
	if err := h.sessions.Store().AddFlash(r.Context(), s.ID, session.Flash{Kind: kind, Message: msg}); err != nil {
		h.logger.Warn().Err(err).Msg("failed to store flash message")
	}
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// remoteError shows the remote's message as an alert and sends the visitor back
// to a page that can render. Transport failures are logged with more detail.
func (h *Handler) remoteError(w http.ResponseWriter, r *http.Request, back string, err error) {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		h.internalServerError(w, r, err)
		return
	}
	if apiclient.IsTransport(err) {
		h.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("remote api unreachable")
	}
	h.flash(r, session.FlashError, apiErr.Message)
	h.redirect(w, r, back)
}

func (h *Handler) forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, "error", "ไม่มีสิทธิ์เข้าถึง", "", errorPage{Message: "คุณไม่มีสิทธิ์เข้าถึงหน้านี้"})
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.render(w, r, http.StatusInternalServerError, "error", "เกิดข้อผิดพลาด", "", errorPage{Message: "เกิดข้อผิดพลาดภายในระบบ กรุณาลองใหม่อีกครั้ง"})
}

type errorPage struct {
	Message string
}

func (h *Handler) validationMessage(err error) string {
	return utils.TranslateFirst(err, h.translator)
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// renderError is for pages that cannot be shown without their data; sending the
// visitor back would loop.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		h.internalServerError(w, r, err)
		return
	}
	h.render(w, r, http.StatusBadGateway, "error", "เกิดข้อผิดพลาด", "", errorPage{Message: apiErr.Message})
}
