package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kruchat2026/devlog/internal/apiclient"
	"github.com/kruchat2026/devlog/internal/apiclient/apiclienttest"
	"github.com/kruchat2026/devlog/internal/domain"
	"github.com/kruchat2026/devlog/internal/repository"
	"github.com/kruchat2026/devlog/internal/utils"
)

var (
	teacher = &domain.User{Email: "teacher@school.ac.th", Name: "ครูสมใจ", Role: domain.RoleTeacher, Status: domain.UserActive}
	admin   = &domain.User{Email: "admin@school.ac.th", Name: "ผอ.", Role: domain.RoleAdmin, Status: domain.UserActive}
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []domain.MailMessage
	err  error
}

func (n *fakeNotifier) Publish(_ context.Context, msg domain.MailMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

type env struct {
	remote   *apiclienttest.Remote
	records  *RecordService
	reviewer *Reviewer
	users    *UserAdmin
	notifier *fakeNotifier
}

func setup(t *testing.T) *env {
	t.Helper()
	remote := apiclienttest.NewRemote(t)
	remote.AddUser(*teacher, "pw")
	remote.AddUser(*admin, "pw")

	client := apiclient.New(apiclient.Options{URL: remote.URL}, zerolog.Nop())
	repo := repository.NewRepository(client)
	validate, trans, err := utils.NewValidator()
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	return &env{
		remote:   remote,
		records:  NewRecordService(repo, validate, trans, 1024, zerolog.Nop()),
		reviewer: NewReviewer(repo, notifier, "http://localhost:3000", zerolog.Nop()),
		users:    NewUserAdmin(repo, notifier, "http://localhost:3000", zerolog.Nop()),
		notifier: notifier,
	}
}

func as(u *domain.User) context.Context {
	return apiclient.WithEmail(context.Background(), u.Email)
}

func hours(h float64) *float64 { return &h }

func workshopA() RecordForm {
	return RecordForm{Title: "Workshop A", ActivityType: "อบรม", StartDate: "2025-01-10", Hours: hours(4)}
}

var pdf = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF")

func TestRecordLifecycleToApproved(t *testing.T) {
	e := setup(t)

	res := e.records.Save(as(teacher), teacher, nil, workshopA(), nil, domain.StatusDraft)
	require.Equal(t, OutcomeSaved, res.Outcome)
	require.Equal(t, "R1", res.RecordID)

	existing := e.remote.Record("R1")
	require.True(t, existing.EditableBy(teacher.Email))

	res = e.records.Save(as(teacher), teacher, existing, FormFromRecord(existing), nil, domain.StatusSubmitted)
	require.Equal(t, OutcomeSaved, res.Outcome)
	require.Equal(t, domain.StatusSubmitted, e.remote.Record("R1").Status)

	pending, err := e.reviewer.Pending(as(admin))
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, e.reviewer.Approve(as(admin), "R1"))
	require.Equal(t, domain.StatusApproved, e.remote.Record("R1").Status)

	records, stats, err := e.records.List(as(teacher), teacher, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.InDelta(t, 4.0, stats.ApprovedHours, 0.001)
	require.Equal(t, 1, stats.ApprovedCount)
	require.Equal(t, 0, stats.SubmittedCount)

	require.Len(t, e.notifier.sent, 1)
	require.Equal(t, domain.MailRecordReviewed, e.notifier.sent[0].Type)
	require.Equal(t, teacher.Email, e.notifier.sent[0].To)
}

func TestSaveUploadFailureKeepsRecord(t *testing.T) {
	e := setup(t)
	e.remote.Fail(apiclient.ActionUploadFile, "drive quota exceeded")

	res := e.records.Save(as(teacher), teacher, nil, workshopA(), &FileUpload{Name: "cert.pdf", Data: pdf}, domain.StatusSubmitted)
	require.Equal(t, OutcomeSavedNoAttachment, res.Outcome)
	require.Equal(t, "R1", res.RecordID)
	require.Contains(t, res.Message, "drive quota exceeded")

	saved := e.remote.Record("R1")
	require.NotNil(t, saved)
	require.Equal(t, domain.StatusSubmitted, saved.Status)
	require.Empty(t, saved.Attachments)
}

func TestSaveWithAttachment(t *testing.T) {
	e := setup(t)

	res := e.records.Save(as(teacher), teacher, nil, workshopA(), &FileUpload{Name: "ใบประกาศ", Data: pdf}, domain.StatusDraft)
	require.Equal(t, OutcomeSaved, res.Outcome)

	calls := e.remote.Calls()
	require.Equal(t, apiclient.ActionUpsertRecord, calls[0].Action)
	require.Equal(t, apiclient.ActionUploadFile, calls[1].Action)
	require.Equal(t, "R1", calls[1].Body["recordId"])
	require.Equal(t, "application/pdf", calls[1].Body["mimeType"])
	require.Equal(t, "ใบประกาศ.pdf", calls[1].Body["fileName"])

	att := e.remote.Record("R1").Attachment()
	require.NotNil(t, att)
	require.Equal(t, "ใบประกาศ.pdf", att.FileName)
}

func TestSaveUpsertFailure(t *testing.T) {
	e := setup(t)
	e.remote.Fail(apiclient.ActionUpsertRecord, "sheet locked")

	res := e.records.Save(as(teacher), teacher, nil, workshopA(), &FileUpload{Name: "cert.pdf", Data: pdf}, domain.StatusDraft)
	require.Equal(t, OutcomeFailed, res.Outcome)
	require.Equal(t, "sheet locked", res.Message)
	require.Zero(t, e.remote.Count(apiclient.ActionUploadFile))
}

func TestSaveValidationBlocksCalls(t *testing.T) {
	e := setup(t)

	tests := []struct {
		name string
		form RecordForm
		file *FileUpload
	}{
		{"missing title", RecordForm{ActivityType: "อบรม", StartDate: "2025-01-10", Hours: hours(1)}, nil},
		{"missing activity type", RecordForm{Title: "x", StartDate: "2025-01-10", Hours: hours(1)}, nil},
		{"missing start date", RecordForm{Title: "x", ActivityType: "อบรม", Hours: hours(1)}, nil},
		{"missing hours", RecordForm{Title: "x", ActivityType: "อบรม", StartDate: "2025-01-10"}, nil},
		{"negative hours", RecordForm{Title: "x", ActivityType: "อบรม", StartDate: "2025-01-10", Hours: hours(-1)}, nil},
		{"bad evidence link", RecordForm{Title: "x", ActivityType: "อบรม", StartDate: "2025-01-10", Hours: hours(1), EvidenceURL: "not a link"}, nil},
		{"wrong file type", workshopA(), &FileUpload{Name: "notes.txt", Data: []byte("hello world")}},
		{"file too large", workshopA(), &FileUpload{Name: "big.pdf", Data: append(pdf, make([]byte, 2048)...)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.records.Save(as(teacher), teacher, nil, tt.form, tt.file, domain.StatusSubmitted)
			require.Equal(t, OutcomeInvalid, res.Outcome)
			require.NotEmpty(t, res.Message)
		})
	}
	require.Empty(t, e.remote.Calls())
}

func TestSaveValidationMessageIsThai(t *testing.T) {
	e := setup(t)

	form := workshopA()
	form.Title = "  "
	res := e.records.Save(as(teacher), teacher, nil, form, nil, domain.StatusDraft)
	require.Equal(t, "กรุณากรอกชื่อกิจกรรม", res.Message)
}

func TestSaveZeroHoursIsAllowed(t *testing.T) {
	e := setup(t)

	form := workshopA()
	form.Hours = hours(0)
	res := e.records.Save(as(teacher), teacher, nil, form, nil, domain.StatusDraft)
	require.Equal(t, OutcomeSaved, res.Outcome)
}

func TestSaveLockedRecord(t *testing.T) {
	e := setup(t)

	for _, status := range []domain.RecordStatus{domain.StatusSubmitted, domain.StatusApproved} {
		existing := &domain.Record{RecordID: "R9", OwnerEmail: teacher.Email, Status: status}
		res := e.records.Save(as(teacher), teacher, existing, workshopA(), nil, domain.StatusDraft)
		require.Equal(t, OutcomeNotEditable, res.Outcome)
	}

	other := &domain.Record{RecordID: "R9", OwnerEmail: "other@school.ac.th", Status: domain.StatusDraft}
	res := e.records.Save(as(teacher), teacher, other, workshopA(), nil, domain.StatusDraft)
	require.Equal(t, OutcomeNotEditable, res.Outcome)

	res = e.records.Save(as(teacher), teacher, nil, workshopA(), nil, domain.StatusApproved)
	require.Equal(t, OutcomeInvalid, res.Outcome)

	require.Empty(t, e.remote.Calls())
}

func TestSaveRejectedRecordCanBeResubmitted(t *testing.T) {
	e := setup(t)
	id := e.remote.AddRecord(domain.Record{OwnerEmail: teacher.Email, Title: "Old", ActivityType: "PLC", StartDate: "2025-02-01", Hours: 2, Status: domain.StatusRejected, ReviewComment: "ขาดหลักฐาน"})

	existing := e.remote.Record(id)
	form := FormFromRecord(existing)
	form.EvidenceURL = "https://drive.example.com/evidence"

	res := e.records.Save(as(teacher), teacher, existing, form, nil, domain.StatusSubmitted)
	require.Equal(t, OutcomeSaved, res.Outcome)
	require.Equal(t, id, res.RecordID)

	saved := e.remote.Record(id)
	require.Equal(t, domain.StatusSubmitted, saved.Status)
	require.Equal(t, []domain.Attachment{{FileName: EvidenceLinkName, FileURL: "https://drive.example.com/evidence"}}, saved.Attachments)
}

func TestSaveSanitizesFreeText(t *testing.T) {
	e := setup(t)

	form := workshopA()
	form.Reflection = "<b>ได้เรียนรู้</b><script>alert(1)</script>"
	res := e.records.Save(as(teacher), teacher, nil, form, nil, domain.StatusDraft)
	require.Equal(t, OutcomeSaved, res.Outcome)
	require.Equal(t, "ได้เรียนรู้", e.remote.Record(res.RecordID).Reflection)
}

func TestListFilterOnlyForAdmins(t *testing.T) {
	e := setup(t)
	e.remote.AddRecord(domain.Record{OwnerEmail: teacher.Email, Title: "a", Status: domain.StatusDraft})
	e.remote.AddRecord(domain.Record{OwnerEmail: teacher.Email, Title: "b", Status: domain.StatusSubmitted})

	records, stats, err := e.records.List(as(teacher), teacher, domain.StatusSubmitted)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, 1, stats.SubmittedCount)
	require.NotContains(t, e.remote.Calls()[0].Body, "status")

	records, _, err = e.records.List(as(admin), admin, domain.StatusSubmitted)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestDeleteRecord(t *testing.T) {
	e := setup(t)
	id := e.remote.AddRecord(domain.Record{OwnerEmail: teacher.Email, Title: "a", Status: domain.StatusDraft})

	require.ErrorIs(t, e.records.Delete(as(teacher), teacher, id, false), ErrNotConfirmed)
	require.Empty(t, e.remote.Calls())

	require.NoError(t, e.records.Delete(as(teacher), teacher, id, true))
	require.Nil(t, e.remote.Record(id))

	err := e.records.Delete(as(teacher), teacher, id, true)
	require.EqualError(t, err, "record not found")
}

func TestRejectCancelledMakesNoCalls(t *testing.T) {
	e := setup(t)
	id := e.remote.AddRecord(domain.Record{OwnerEmail: teacher.Email, Title: "a", Status: domain.StatusSubmitted})

	err := e.reviewer.Reject(as(admin), id, nil)
	require.ErrorIs(t, err, ErrPromptCancelled)
	require.Empty(t, e.remote.Calls())
	require.Equal(t, domain.StatusSubmitted, e.remote.Record(id).Status)
}

func TestRejectWithComment(t *testing.T) {
	e := setup(t)
	id := e.remote.AddRecord(domain.Record{OwnerEmail: teacher.Email, Title: "a", Status: domain.StatusSubmitted})

	empty := ""
	require.NoError(t, e.reviewer.Reject(as(admin), id, &empty))
	call := e.remote.Calls()[len(e.remote.Calls())-1]
	require.Equal(t, apiclient.ActionReviewRecord, call.Action)
	require.Equal(t, "rejected", call.Body["reviewAction"])
	require.Equal(t, "", call.Body["comment"])
	require.Equal(t, domain.StatusRejected, e.remote.Record(id).Status)
}

func TestReviewNotPending(t *testing.T) {
	e := setup(t)
	id := e.remote.AddRecord(domain.Record{OwnerEmail: teacher.Email, Title: "a", Status: domain.StatusDraft})

	require.ErrorIs(t, e.reviewer.Approve(as(admin), id), ErrRecordNotFound)
	require.Zero(t, e.remote.Count(apiclient.ActionReviewRecord))
}

func TestReviewNotificationFailureIsIgnored(t *testing.T) {
	e := setup(t)
	e.notifier.err = errors.New("broker down")
	id := e.remote.AddRecord(domain.Record{OwnerEmail: teacher.Email, Title: "a", Status: domain.StatusSubmitted})

	require.NoError(t, e.reviewer.Approve(as(admin), id))
	require.Equal(t, domain.StatusApproved, e.remote.Record(id).Status)
}

func TestPendingUserPartition(t *testing.T) {
	e := setup(t)
	e.remote.AddUser(domain.User{Email: "new@school.ac.th", Name: "ครูใหม่", Role: domain.RoleTeacher, Status: domain.UserPending}, "pw")

	list, err := e.users.List(as(admin))
	require.NoError(t, err)
	require.Len(t, list.Pending, 1)
	require.Equal(t, "new@school.ac.th", list.Pending[0].Email)
	for _, u := range list.Others {
		require.NotEqual(t, "new@school.ac.th", u.Email)
	}
}

func TestSelfActionBlockedBeforeAnyCall(t *testing.T) {
	e := setup(t)
	ctx := as(admin)

	for _, email := range []string{admin.Email, "ADMIN@school.ac.th", " admin@school.ac.th "} {
		_, err := e.users.ToggleRole(ctx, admin, email, true)
		require.ErrorIs(t, err, ErrSelfAction)
		_, err = e.users.ToggleStatus(ctx, admin, email, true)
		require.ErrorIs(t, err, ErrSelfAction)
		require.ErrorIs(t, e.users.Delete(ctx, admin, email, true), ErrSelfAction)
	}
	require.Empty(t, e.remote.Calls())
}

func TestUserActionsRequireConfirmation(t *testing.T) {
	e := setup(t)

	_, err := e.users.ToggleRole(as(admin), admin, teacher.Email, false)
	require.ErrorIs(t, err, ErrNotConfirmed)
	require.ErrorIs(t, e.users.Delete(as(admin), admin, teacher.Email, false), ErrNotConfirmed)
	require.Empty(t, e.remote.Calls())
}

func TestUserActionsRequireAdmin(t *testing.T) {
	e := setup(t)

	_, err := e.users.ToggleStatus(as(teacher), teacher, admin.Email, true)
	require.ErrorIs(t, err, ErrForbidden)
	require.Empty(t, e.remote.Calls())
}

func TestToggleRoleAndStatus(t *testing.T) {
	e := setup(t)

	role, err := e.users.ToggleRole(as(admin), admin, teacher.Email, true)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, role)
	require.Equal(t, domain.RoleAdmin, e.remote.User(teacher.Email).Role)

	status, err := e.users.ToggleStatus(as(admin), admin, teacher.Email, true)
	require.NoError(t, err)
	require.Equal(t, domain.UserInactive, status)

	status, err = e.users.ToggleStatus(as(admin), admin, teacher.Email, true)
	require.NoError(t, err)
	require.Equal(t, domain.UserActive, status)
	require.Empty(t, e.notifier.sent)

	_, err = e.users.ToggleRole(as(admin), admin, "ghost@school.ac.th", true)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestApprovePendingUser(t *testing.T) {
	e := setup(t)
	e.remote.AddUser(domain.User{Email: "new@school.ac.th", Name: "ครูใหม่", Role: domain.RoleTeacher, Status: domain.UserPending}, "pw")

	_, err := e.users.ToggleRole(as(admin), admin, "new@school.ac.th", true)
	require.ErrorIs(t, err, ErrPendingUser)

	status, err := e.users.ToggleStatus(as(admin), admin, "new@school.ac.th", true)
	require.NoError(t, err)
	require.Equal(t, domain.UserActive, status)

	require.Len(t, e.notifier.sent, 1)
	require.Equal(t, domain.MailAccountApproved, e.notifier.sent[0].Type)
	require.Equal(t, "new@school.ac.th", e.notifier.sent[0].To)
}

func TestDeleteUser(t *testing.T) {
	e := setup(t)

	require.NoError(t, e.users.Delete(as(admin), admin, teacher.Email, true))
	require.Nil(t, e.remote.User(teacher.Email))
}
