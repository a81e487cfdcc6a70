package service

import (
	"context"
	"encoding/base64"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/kruchat2026/devlog/internal/domain"
	"github.com/kruchat2026/devlog/internal/metrics"
	"github.com/kruchat2026/devlog/internal/repository"
	"github.com/kruchat2026/devlog/internal/utils"
)

const EvidenceLinkName = "ลิงก์หลักฐาน"

type RecordStore interface {
	ListRecords(ctx context.Context, status domain.RecordStatus) ([]*domain.Record, error)
	UpsertRecord(ctx context.Context, record *domain.Record) (string, error)
	UploadFile(ctx context.Context, req repository.UploadFileRequest) (*domain.Attachment, error)
	DeleteRecord(ctx context.Context, recordID string) error
}

// RecordForm is the editable part of a record as typed into the form.
type RecordForm struct {
	Title        string   `validate:"required,max=300" label:"ชื่อกิจกรรม"`
	ActivityType string   `validate:"required" label:"ประเภทกิจกรรม"`
	Format       string   `validate:"omitempty,oneof=onsite online hybrid" label:"รูปแบบกิจกรรม"`
	StartDate    string   `validate:"required,datetime=2006-01-02" label:"วันที่เริ่มต้น"`
	EndDate      string   `validate:"omitempty,datetime=2006-01-02" label:"วันที่สิ้นสุด"`
	Organizer    string   `label:"หน่วยงานผู้จัด"`
	Hours        *float64 `validate:"required,gte=0" label:"จำนวนชั่วโมง"`
	ExpectedGoal string   `label:"เป้าหมายที่คาดหวัง"`
	Reflection   string   `label:"สิ่งที่ได้เรียนรู้"`
	EvidenceURL  string   `validate:"omitempty,url" label:"ลิงก์หลักฐาน"`
}

// FormFromRecord pre-fills the form when editing.
func FormFromRecord(r *domain.Record) RecordForm {
	hours := r.Hours
	form := RecordForm{
		Title:        r.Title,
		ActivityType: r.ActivityType,
		Format:       string(r.Format),
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Organizer:    r.Organizer,
		Hours:        &hours,
		ExpectedGoal: r.ExpectedGoal,
		Reflection:   r.Reflection,
	}
	if att := r.Attachment(); att != nil && att.FileName == EvidenceLinkName {
		form.EvidenceURL = att.FileURL
	}
	return form
}

type SaveOutcome string

const (
	OutcomeSaved             SaveOutcome = "saved"
	OutcomeSavedNoAttachment SaveOutcome = "saved_no_attachment"
	OutcomeFailed            SaveOutcome = "failed"
	OutcomeInvalid           SaveOutcome = "invalid"
	OutcomeNotEditable       SaveOutcome = "not_editable"
)

// SaveResult is the end state of the two-step save. RecordID is set whenever
// the metadata step succeeded, including OutcomeSavedNoAttachment.
type SaveResult struct {
	Outcome  SaveOutcome
	RecordID string
	Status   domain.RecordStatus
	Err      error
	Message  string
}

type RecordService struct {
	store         RecordStore
	validate      *validator.Validate
	translator    ut.Translator
	maxUploadSize int64
	logger        zerolog.Logger
}

func NewRecordService(store RecordStore, validate *validator.Validate, trans ut.Translator, maxUploadSize int64, logger zerolog.Logger) *RecordService {
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	return &RecordService{
		store:         store,
		validate:      validate,
		translator:    trans,
		maxUploadSize: maxUploadSize,
		logger:        logger.With().Str("component", "record_service").Logger(),
	}
}

// List returns the caller's records and the dashboard figures. The status
// filter only applies to admins.
func (s *RecordService) List(ctx context.Context, user *domain.User, status domain.RecordStatus) ([]*domain.Record, domain.Stats, error) {
	if !user.IsAdmin() {
		status = ""
	}
	records, err := s.store.ListRecords(ctx, status)
	if err != nil {
		return nil, domain.Stats{}, err
	}
	return records, domain.ComputeStats(records), nil
}

// Find looks a record up in the caller's list.
func (s *RecordService) Find(ctx context.Context, user *domain.User, recordID string) (*domain.Record, error) {
	records, _, err := s.List(ctx, user, "")
	if err != nil {
		return nil, err
	}
	record := domain.FindRecord(records, recordID)
	if record == nil {
		return nil, ErrRecordNotFound
	}
	return record, nil
}

// Save validates the form and runs the save saga: upsert the metadata with the
// target status, then upload the attachment under the returned id. A failed
// upload leaves the saved record in place and yields OutcomeSavedNoAttachment.
func (s *RecordService) Save(ctx context.Context, owner *domain.User, existing *domain.Record, form RecordForm, file *FileUpload, target domain.RecordStatus) SaveResult {
	res := s.save(ctx, owner, existing, form, file, target)
	metrics.RecordSavesTotal.WithLabelValues(string(res.Outcome)).Inc()

	ev := s.logger.Info()
	if res.Outcome != OutcomeSaved {
		ev = s.logger.Warn().AnErr("error", res.Err)
	}
	ev.Str("outcome", string(res.Outcome)).Str("record_id", res.RecordID).Str("owner", owner.Email).Msg("record save finished")

	return res
}

func (s *RecordService) save(ctx context.Context, owner *domain.User, existing *domain.Record, form RecordForm, file *FileUpload, target domain.RecordStatus) SaveResult {
	invalid := func(err error, msg string) SaveResult {
		return SaveResult{Outcome: OutcomeInvalid, Err: err, Message: msg, Status: target}
	}

	if target != domain.StatusDraft && target != domain.StatusSubmitted {
		return invalid(ErrForbidden, ErrForbidden.Error())
	}
	if existing != nil && !existing.EditableBy(owner.Email) {
		return SaveResult{Outcome: OutcomeNotEditable, RecordID: existing.RecordID, Err: ErrForbidden, Message: "บันทึกนี้ไม่สามารถแก้ไขได้แล้ว", Status: existing.Status}
	}

	form.Title = strings.TrimSpace(form.Title)
	form.EvidenceURL = strings.TrimSpace(form.EvidenceURL)
	if err := s.validate.Struct(form); err != nil {
		return invalid(err, utils.TranslateFirst(err, s.translator))
	}

	var mime string
	if file != nil {
		var err error
		if mime, err = file.inspect(s.maxUploadSize); err != nil {
			return invalid(err, err.Error())
		}
	}

	record := s.buildRecord(owner, existing, form, target)

	// step 1: metadata
	recordID, err := s.store.UpsertRecord(ctx, record)
	if err != nil {
		return SaveResult{Outcome: OutcomeFailed, Err: err, Message: err.Error(), Status: target}
	}
	if file == nil {
		return SaveResult{Outcome: OutcomeSaved, RecordID: recordID, Status: target, Message: savedMessage(target)}
	}

	// step 2: attachment, no rollback of step 1
	_, err = s.store.UploadFile(ctx, repository.UploadFileRequest{
		RecordID:   recordID,
		FileName:   file.fileName(mime),
		MimeType:   mime,
		Base64Data: base64.StdEncoding.EncodeToString(file.Data),
	})
	if err != nil {
		return SaveResult{
			Outcome:  OutcomeSavedNoAttachment,
			RecordID: recordID,
			Status:   target,
			Err:      err,
			Message:  "บันทึกข้อมูลแล้ว แต่แนบไฟล์ไม่สำเร็จ: " + err.Error(),
		}
	}

	return SaveResult{Outcome: OutcomeSaved, RecordID: recordID, Status: target, Message: savedMessage(target)}
}

func savedMessage(target domain.RecordStatus) string {
	if target == domain.StatusSubmitted {
		return "บันทึกและส่งตรวจเรียบร้อยแล้ว"
	}
	return "บันทึกร่างเรียบร้อยแล้ว"
}

func (s *RecordService) buildRecord(owner *domain.User, existing *domain.Record, form RecordForm, target domain.RecordStatus) *domain.Record {
	format := domain.Format(form.Format)
	if format == "" {
		format = domain.FormatOnsite
	}

	record := &domain.Record{
		OwnerEmail:   owner.Email,
		Title:        form.Title,
		ActivityType: form.ActivityType,
		Format:       format,
		StartDate:    form.StartDate,
		EndDate:      form.EndDate,
		Organizer:    strings.TrimSpace(form.Organizer),
		Hours:        *form.Hours,
		ExpectedGoal: utils.PlainText(form.ExpectedGoal),
		Reflection:   utils.PlainText(form.Reflection),
		Status:       target,
	}
	if record.EndDate == "" {
		record.EndDate = record.StartDate
	}
	if existing != nil {
		record.RecordID = existing.RecordID
		record.Attachments = existing.Attachments
	}
	if form.EvidenceURL != "" {
		record.Attachments = []domain.Attachment{{FileName: EvidenceLinkName, FileURL: form.EvidenceURL}}
	}
	return record
}

// Delete removes a record after the user confirmed it.
func (s *RecordService) Delete(ctx context.Context, user *domain.User, recordID string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if recordID == "" {
		return ErrRecordNotFound
	}
	if err := s.store.DeleteRecord(ctx, recordID); err != nil {
		return err
	}
	s.logger.Info().Str("record_id", recordID).Str("by", user.Email).Msg("record deleted")
	return nil
}

func IsInvalid(res SaveResult) bool {
	return res.Outcome == OutcomeInvalid
}
