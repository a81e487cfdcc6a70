package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kruchat2026/devlog/internal/apiclient"
)

type loginPage struct {
	Email   string
	Error   string
	Success string
}

type registerPage struct {
	Email string
	Name  string
	Error string
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if u := currentUser(r); u.IsActive() {
		h.redirect(w, r, "/")
		return
	}
	h.render(w, r, http.StatusOK, "login", "เข้าสู่ระบบ", "", loginPage{})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Email    string `validate:"required,email" label:"อีเมล"`
		Password string `validate:"required" label:"รหัสผ่าน"`
	}{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	fail := func(status int, msg string) {
		h.render(w, r, status, "login", "เข้าสู่ระบบ", "", loginPage{Email: req.Email, Error: msg})
	}

	if err := h.validate.Struct(req); err != nil {
		fail(http.StatusUnprocessableEntity, h.validationMessage(err))
		return
	}

	user, err := h.repository.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		var apiErr *apiclient.Error
		if !errors.As(err, &apiErr) {
			h.internalServerError(w, r, err)
			return
		}
		fail(http.StatusUnauthorized, apiErr.Message)
		return
	}

	if msg := inactiveMessage(user); msg != "" {
		fail(http.StatusForbidden, msg)
		return
	}

	if _, err := h.sessions.Start(r.Context(), w, user); err != nil {
		h.internalServerError(w, r, err)
		return
	}
	h.logger.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("user logged in")
	h.redirect(w, r, "/")
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", "ลงทะเบียน", "", registerPage{})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Email           string `validate:"required,email" label:"อีเมล"`
		Name            string `validate:"required,max=100" label:"ชื่อ-นามสกุล"`
		Password        string `validate:"required,min=6" label:"รหัสผ่าน"`
		ConfirmPassword string `validate:"eqfield=Password" label:"ยืนยันรหัสผ่าน"`
	}{
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Name:            strings.TrimSpace(r.PostFormValue("name")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}

	fail := func(status int, msg string) {
		h.render(w, r, status, "register", "ลงทะเบียน", "", registerPage{Email: req.Email, Name: req.Name, Error: msg})
	}

	if err := h.validate.Struct(req); err != nil {
		fail(http.StatusUnprocessableEntity, h.validationMessage(err))
		return
	}

	if err := h.repository.RegisterUser(r.Context(), req.Email, req.Name, req.Password); err != nil {
		var apiErr *apiclient.Error
		if !errors.As(err, &apiErr) {
			h.internalServerError(w, r, err)
			return
		}
		fail(http.StatusOK, apiErr.Message)
		return
	}

	h.logger.Info().Str("email", req.Email).Msg("account registered")
	h.render(w, r, http.StatusOK, "login", "เข้าสู่ระบบ", "", loginPage{
		Email:   req.Email,
		Success: "ลงทะเบียนสำเร็จ กรุณารอผู้ดูแลระบบอนุมัติบัญชีก่อนเข้าสู่ระบบ",
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.Context(), w, currentSession(r)); err != nil {
		h.logger.Warn().Err(err).Msg("failed to clear session")
	}
	h.redirect(w, r, "/login")
}
