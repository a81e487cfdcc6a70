package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kruchat2026/devlog/internal/domain"
	"github.com/kruchat2026/devlog/internal/metrics"
	"github.com/kruchat2026/devlog/internal/utils"
)

type ReviewStore interface {
	ListRecords(ctx context.Context, status domain.RecordStatus) ([]*domain.Record, error)
	ReviewRecord(ctx context.Context, recordID string, decision domain.RecordStatus, comment string) error
}

type Reviewer struct {
	store    ReviewStore
	notifier Notifier
	appURL   string
	logger   zerolog.Logger
}

func NewReviewer(store ReviewStore, notifier Notifier, appURL string, logger zerolog.Logger) *Reviewer {
	return &Reviewer{
		store:    store,
		notifier: notifier,
		appURL:   appURL,
		logger:   logger.With().Str("component", "reviewer").Logger(),
	}
}

// Pending loads the records waiting for review. Anything that is not
// submitted is dropped even if the remote ignores the filter.
func (s *Reviewer) Pending(ctx context.Context) ([]*domain.Record, error) {
	records, err := s.store.ListRecords(ctx, domain.StatusSubmitted)
	if err != nil {
		return nil, err
	}
	pending := make([]*domain.Record, 0, len(records))
	for _, r := range records {
		if r.Status == domain.StatusSubmitted {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

func (s *Reviewer) Approve(ctx context.Context, recordID string) error {
	return s.decide(ctx, recordID, domain.StatusApproved, "")
}

// Reject sends the rejection with the given comment. A nil comment means the
// prompt was cancelled: nothing is sent and ErrPromptCancelled is returned.
func (s *Reviewer) Reject(ctx context.Context, recordID string, comment *string) error {
	if comment == nil {
		return ErrPromptCancelled
	}
	return s.decide(ctx, recordID, domain.StatusRejected, utils.PlainText(*comment))
}

func (s *Reviewer) decide(ctx context.Context, recordID string, decision domain.RecordStatus, comment string) error {
	pending, err := s.Pending(ctx)
	if err != nil {
		return err
	}
	record := domain.FindRecord(pending, recordID)
	if record == nil {
		return ErrRecordNotFound
	}

	if err := s.store.ReviewRecord(ctx, recordID, decision, comment); err != nil {
		return err
	}
	metrics.ReviewsTotal.WithLabelValues(string(decision)).Inc()
	s.logger.Info().Str("record_id", recordID).Str("decision", string(decision)).Msg("record reviewed")

	s.notify(ctx, record, decision, comment)
	return nil
}

func (s *Reviewer) notify(ctx context.Context, record *domain.Record, decision domain.RecordStatus, comment string) {
	if s.notifier == nil || record.OwnerEmail == "" {
		return
	}
	msg := domain.MailMessage{
		Type: domain.MailRecordReviewed,
		To:   record.OwnerEmail,
		Data: domain.RecordReviewedMailData{
			Title:    record.Title,
			Decision: string(decision),
			Comment:  comment,
			Hours:    record.Hours,
			AppURL:   s.appURL,
		},
	}
	if err := s.notifier.Publish(ctx, msg); err != nil {
		s.logger.Warn().Err(err).Str("record_id", record.RecordID).Msg("failed to publish review notification")
	}
}
