package handler

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kruchat2026/devlog/internal/domain"
	"github.com/kruchat2026/devlog/internal/export"
	"github.com/kruchat2026/devlog/internal/service"
	"github.com/kruchat2026/devlog/internal/session"
)

const recentCount = 5

type dashboardPage struct {
	Stats     domain.Stats
	HoursGoal float64
	Progress  int
	Recent    []*domain.Record
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	records, stats, err := h.records.List(r.Context(), user, "")
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	goal := h.config.App.HoursGoal
	progress := 0
	if goal > 0 {
		progress = int(math.Min(100, math.Round(stats.ApprovedHours/goal*100)))
	}

	h.render(w, r, http.StatusOK, "dashboard", "ภาพรวม", domain.ViewDashboard, dashboardPage{
		Stats:     stats,
		HoursGoal: goal,
		Progress:  progress,
		Recent:    domain.RecentRecords(records, recentCount),
	})
}

type recordsPage struct {
	Records  []*domain.Record
	Stats    domain.Stats
	Query    string
	Status   domain.RecordStatus
	Statuses []domain.RecordStatus
}

var filterStatuses = []domain.RecordStatus{
	domain.StatusDraft,
	domain.StatusSubmitted,
	domain.StatusApproved,
	domain.StatusRejected,
}

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	status := domain.RecordStatus(r.URL.Query().Get("status"))
	q := r.URL.Query().Get("q")

	records, stats, err := h.records.List(r.Context(), user, status)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := recordsPage{
		Records: domain.FilterRecords(records, q),
		Stats:   stats,
		Query:   q,
	}
	if user.IsAdmin() {
		data.Status = status
		data.Statuses = filterStatuses
	}
	h.render(w, r, http.StatusOK, "records", "บันทึกของฉัน", domain.ViewRecords, data)
}

func (h *Handler) ExportRecords(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	status := domain.RecordStatus(r.URL.Query().Get("status"))

	records, _, err := h.records.List(r.Context(), user, status)
	if err != nil {
		h.remoteError(w, r, "/records", err)
		return
	}
	records = domain.FilterRecords(records, r.URL.Query().Get("q"))

	buf, filename, err := export.Records(records, user, h.now())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Description", "File Transfer")
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type recordFormPage struct {
	Record        *domain.Record
	Form          service.RecordForm
	Action        string
	Error         string
	ActivityTypes []string
	Formats       []domain.Format
	MaxUploadMB   int64
}

func (h *Handler) recordForm(w http.ResponseWriter, r *http.Request, status int, existing *domain.Record, form service.RecordForm, msg string) {
	title := "เพิ่มบันทึกใหม่"
	action := "/records/new"
	if existing != nil {
		title = "แก้ไขบันทึก"
		action = "/records/" + existing.RecordID + "/edit"
	}
	h.render(w, r, status, "record_form", title, domain.ViewRecords, recordFormPage{
		Record:        existing,
		Form:          form,
		Action:        action,
		Error:         msg,
		ActivityTypes: domain.ActivityTypes,
		Formats:       domain.Formats,
		MaxUploadMB:   h.config.App.MaxUploadSize,
	})
}

func (h *Handler) NewRecord(w http.ResponseWriter, r *http.Request) {
	form := service.RecordForm{
		ActivityType: domain.ActivityTypes[0],
		Format:       string(domain.FormatOnsite),
		StartDate:    h.now().Format("2006-01-02"),
	}
	h.recordForm(w, r, http.StatusOK, nil, form, "")
}

func (h *Handler) EditRecord(w http.ResponseWriter, r *http.Request) {
	rec := currentRecord(r)
	if !rec.EditableBy(currentUser(r).Email) {
		h.flash(r, session.FlashError, "บันทึกนี้ไม่สามารถแก้ไขได้แล้ว")
		h.redirect(w, r, "/records")
		return
	}
	h.recordForm(w, r, http.StatusOK, rec, service.FormFromRecord(rec), "")
}

func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	h.saveRecord(w, r, nil)
}

func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	h.saveRecord(w, r, currentRecord(r))
}

func (h *Handler) saveRecord(w http.ResponseWriter, r *http.Request, existing *domain.Record) {
	maxUpload := h.config.App.MaxUploadSize * 1024 * 1024
	// room for the other fields and multipart overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+(1<<20))
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.recordForm(w, r, http.StatusRequestEntityTooLarge, existing, service.RecordForm{}, fmt.Sprintf("ไฟล์แนบต้องมีขนาดไม่เกิน %d MB", h.config.App.MaxUploadSize))
			return
		}
		h.recordForm(w, r, http.StatusBadRequest, existing, service.RecordForm{}, "ข้อมูลฟอร์มไม่ถูกต้อง")
		return
	}

	form := readRecordForm(r)
	file, err := readUpload(r, maxUpload)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	target := domain.StatusDraft
	if r.PostFormValue("submit") == string(domain.StatusSubmitted) {
		target = domain.StatusSubmitted
	}

	res := h.records.Save(r.Context(), currentUser(r), existing, form, file, target)
	switch res.Outcome {
	case service.OutcomeSaved:
		h.flash(r, session.FlashSuccess, res.Message)
		h.redirect(w, r, "/records")
	case service.OutcomeSavedNoAttachment:
		h.flash(r, session.FlashWarning, res.Message)
		h.redirect(w, r, "/records")
	case service.OutcomeNotEditable:
		h.flash(r, session.FlashError, res.Message)
		h.redirect(w, r, "/records")
	case service.OutcomeInvalid:
		h.recordForm(w, r, http.StatusUnprocessableEntity, existing, form, res.Message)
	default:
		h.recordForm(w, r, http.StatusBadGateway, existing, form, res.Message)
	}
}

func readRecordForm(r *http.Request) service.RecordForm {
	form := service.RecordForm{
		Title:        r.PostFormValue("title"),
		ActivityType: r.PostFormValue("activity_type"),
		Format:       r.PostFormValue("format"),
		StartDate:    r.PostFormValue("start_date"),
		EndDate:      r.PostFormValue("end_date"),
		Organizer:    r.PostFormValue("organizer"),
		ExpectedGoal: r.PostFormValue("expected_goal"),
		Reflection:   r.PostFormValue("reflection"),
		EvidenceURL:  r.PostFormValue("evidence_url"),
	}
	if raw := strings.TrimSpace(r.PostFormValue("hours")); raw != "" {
		if hours, err := strconv.ParseFloat(raw, 64); err == nil {
			form.Hours = &hours
		}
	}
	return form
}

// readUpload returns nil when no file was chosen. Reading stops one byte past
// the limit so the size check can still reject it.
func readUpload(r *http.Request, limit int64) (*service.FileUpload, error) {
	f, header, err := r.FormFile("attachment")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 && header.Filename == "" {
		return nil, nil
	}
	return &service.FileUpload{Name: header.Filename, Data: data}, nil
}

func (h *Handler) ConfirmDeleteRecord(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "confirm", "ยืนยันการลบ", domain.ViewRecords, confirmPage{
		Message: fmt.Sprintf("ต้องการลบบันทึก \"%s\" ใช่หรือไม่?", currentRecord(r).Title),
		Action:  "/records/" + currentRecord(r).RecordID + "/delete",
		Cancel:  "/records",
		Danger:  true,
	})
}

func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	rec := currentRecord(r)
	confirmed := r.PostFormValue("confirm") == "yes"

	if err := h.records.Delete(r.Context(), currentUser(r), rec.RecordID, confirmed); err != nil {
		if errors.Is(err, service.ErrNotConfirmed) {
			h.redirect(w, r, "/records/"+rec.RecordID+"/delete")
			return
		}
		h.remoteError(w, r, "/records", err)
		return
	}

	h.flash(r, session.FlashSuccess, "ลบบันทึกเรียบร้อยแล้ว")
	h.redirect(w, r, "/records")
}

type confirmPage struct {
	Message string
	Action  string
	Cancel  string
	Danger  bool
	Fields  map[string]string
}
