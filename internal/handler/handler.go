package handler

import (
	"html/template"
	"time"

	"github.com/go-chi/chi/v5"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/kruchat2026/devlog/internal/apiclient"
	"github.com/kruchat2026/devlog/internal/config"
	"github.com/kruchat2026/devlog/internal/domain"
	"github.com/kruchat2026/devlog/internal/notify"
	"github.com/kruchat2026/devlog/internal/repository"
	"github.com/kruchat2026/devlog/internal/service"
	"github.com/kruchat2026/devlog/internal/session"
	"github.com/kruchat2026/devlog/internal/utils"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	client     *apiclient.Client
	repository *repository.Repository
	translator ut.Translator
	sessions   *session.Manager
	records    *service.RecordService
	reviewer   *service.Reviewer
	users      *service.UserAdmin
	pages      map[string]*template.Template
	logger     zerolog.Logger
	now        func() time.Time

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, client *apiclient.Client, sessions *session.Manager, publisher notify.Publisher, logger zerolog.Logger) (*Handler, error) {
	validate, trans, err := utils.NewValidator()
	if err != nil {
		return nil, err
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	if publisher == nil {
		publisher = notify.Nop{}
	}

	repo := repository.NewRepository(client)
	maxUpload := cfg.App.MaxUploadSize * 1024 * 1024

	return &Handler{
		validate:   validate,
		config:     cfg,
		client:     client,
		repository: repo,
		translator: trans,
		sessions:   sessions,
		records:    service.NewRecordService(repo, validate, trans, maxUpload, logger),
		reviewer:   service.NewReviewer(repo, publisher, cfg.Email.AppURL, logger),
		users:      service.NewUserAdmin(repo, publisher, cfg.Email.AppURL, logger),
		pages:      pages,
		logger:     logger,
		now:        time.Now,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestLogger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Healthz)
	h.Mux.Handle("/metrics", promhttp.Handler())

	h.Mux.Group(func(r chi.Router) {
		r.Use(h.session)

		r.Get("/login", h.LoginPage)
		r.Post("/login", h.Login)
		r.Get("/register", h.RegisterPage)
		r.Post("/register", h.Register)
		r.Post("/logout", h.Logout)

		// everything below needs an active account
		r.Group(func(r chi.Router) {
			r.Use(h.auth)

			r.With(h.RequiredView(domain.ViewDashboard)).Get("/", h.Dashboard)

			r.Route("/records", func(r chi.Router) {
				r.Use(h.RequiredView(domain.ViewRecords))
				r.Get("/", h.ListRecords)
				r.Get("/export", h.ExportRecords)
				r.Get("/new", h.NewRecord)
				r.Post("/new", h.CreateRecord)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.record)
					r.Get("/edit", h.EditRecord)
					r.Post("/edit", h.UpdateRecord)
					r.Get("/delete", h.ConfirmDeleteRecord)
					r.Post("/delete", h.DeleteRecord)
				})
			})

			r.Route("/review", func(r chi.Router) {
				r.Use(h.RequiredView(domain.ViewReview))
				r.Get("/", h.ListPending)
				r.Post("/{id}/approve", h.ApproveRecord)
				r.Get("/{id}/reject", h.RejectPrompt)
				r.Post("/{id}/reject", h.RejectRecord)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(h.RequiredView(domain.ViewUsers))
				r.Get("/", h.ListUsers)
				r.Route("/{action:role|status|delete}", func(r chi.Router) {
					r.Use(h.preventOperateSelf)
					r.Get("/", h.ConfirmUserAction)
					r.Post("/", h.UserAction)
				})
			})

			r.With(h.RequiredView(domain.ViewSettings)).Get("/settings", h.Settings)
		})
	})
}
