package repository

import (
	"context"
	"errors"

	"github.com/kruchat2026/devlog/internal/apiclient"
	"github.com/kruchat2026/devlog/internal/domain"
)

var ErrMissingRecordID = errors.New("ระบบไม่ได้ส่งรหัสบันทึกกลับมา")

type UploadFileRequest struct {
	RecordID   string
	FileName   string
	MimeType   string
	Base64Data string
}

// ListRecords returns the caller's records. An empty status means no filter.
func (r *Repository) ListRecords(ctx context.Context, status domain.RecordStatus) ([]*domain.Record, error) {
	var payload apiclient.Payload
	if status != "" {
		payload = apiclient.Payload{"status": status}
	}

	records := []*domain.Record{}
	if err := r.call(ctx, apiclient.ActionListRecords, payload, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// UpsertRecord creates or updates a record and returns its id.
func (r *Repository) UpsertRecord(ctx context.Context, record *domain.Record) (string, error) {
	var data struct {
		RecordID string `json:"recordId"`
	}
	if err := r.call(ctx, apiclient.ActionUpsertRecord, apiclient.Payload{"record": record}, &data); err != nil {
		return "", err
	}
	if data.RecordID == "" {
		data.RecordID = record.RecordID
	}
	return data.RecordID, nil
}

func (r *Repository) DeleteRecord(ctx context.Context, recordID string) error {
	return r.call(ctx, apiclient.ActionDeleteRecord, apiclient.Payload{"recordId": recordID}, nil)
}

func (r *Repository) UploadFile(ctx context.Context, req UploadFileRequest) (*domain.Attachment, error) {
	if req.RecordID == "" {
		return nil, ErrMissingRecordID
	}
	payload := apiclient.Payload{
		"recordId":   req.RecordID,
		"fileName":   req.FileName,
		"mimeType":   req.MimeType,
		"base64Data": req.Base64Data,
	}

	res := r.client.Call(ctx, apiclient.ActionUploadFile, payload)
	if err := res.Err(); err != nil {
		return nil, err
	}

	// the upload already happened; an unexpected data shape is not a failure
	att := &domain.Attachment{FileName: req.FileName}
	_ = res.Decode(att)
	return att, nil
}

func (r *Repository) ReviewRecord(ctx context.Context, recordID string, decision domain.RecordStatus, comment string) error {
	payload := apiclient.Payload{
		"recordId":     recordID,
		"reviewAction": decision,
		"comment":      comment,
	}
	return r.call(ctx, apiclient.ActionReviewRecord, payload, nil)
}
