package handler

import (
	"net/http"

	"github.com/kruchat2026/devlog/internal/domain"
)

type settingsPage struct {
	APIURL               string
	MockMode             bool
	HoursGoal            float64
	MaxUploadMB          int64
	NotificationsEnabled bool
	InFlight             int64
	Environment          string
}

func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "settings", "ตั้งค่าระบบ", domain.ViewSettings, settingsPage{
		APIURL:               h.client.URL(),
		MockMode:             h.client.MockMode(),
		HoursGoal:            h.config.App.HoursGoal,
		MaxUploadMB:          h.config.App.MaxUploadSize,
		NotificationsEnabled: h.config.NotificationsEnabled(),
		InFlight:             h.client.InFlight(),
		Environment:          h.config.Environment,
	})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"status":   "ok",
		"mockMode": h.client.MockMode(),
	})
}
