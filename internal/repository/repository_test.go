package repository

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kruchat2026/devlog/internal/apiclient"
	"github.com/kruchat2026/devlog/internal/apiclient/apiclienttest"
	"github.com/kruchat2026/devlog/internal/domain"
)

func setup(t *testing.T) (*Repository, *apiclienttest.Remote) {
	t.Helper()
	remote := apiclienttest.NewRemote(t)
	remote.AddUser(domain.User{Email: "teacher@school.ac.th", Name: "ครูสมใจ", Role: domain.RoleTeacher, Status: domain.UserActive}, "pw")
	remote.AddUser(domain.User{Email: "admin@school.ac.th", Name: "ผอ.", Role: domain.RoleAdmin, Status: domain.UserActive}, "pw")
	client := apiclient.New(apiclient.Options{URL: remote.URL}, zerolog.Nop())
	return NewRepository(client), remote
}

func as(email string) context.Context {
	return apiclient.WithEmail(context.Background(), email)
}

func TestUsers(t *testing.T) {
	repo, remote := setup(t)

	me, err := repo.GetMe(as("teacher@school.ac.th"))
	require.NoError(t, err)
	require.Equal(t, "ครูสมใจ", me.Name)

	_, err = repo.GetMe(as("nobody@school.ac.th"))
	require.EqualError(t, err, "user not found")

	user, err := repo.LoginUser(context.Background(), "admin@school.ac.th", "pw")
	require.NoError(t, err)
	require.True(t, user.IsAdmin())

	_, err = repo.LoginUser(context.Background(), "admin@school.ac.th", "wrong")
	require.Error(t, err)

	require.NoError(t, repo.RegisterUser(context.Background(), "new@school.ac.th", "ครูใหม่", "pw"))
	require.Equal(t, domain.UserPending, remote.User("new@school.ac.th").Status)

	users, err := repo.GetAllUsers(as("admin@school.ac.th"))
	require.NoError(t, err)
	require.Len(t, users, 3)

	status := domain.UserActive
	require.NoError(t, repo.UpdateUser(as("admin@school.ac.th"), "new@school.ac.th", UserUpdates{Status: &status}))
	require.Equal(t, domain.UserActive, remote.User("new@school.ac.th").Status)
	body := remote.Calls()[len(remote.Calls())-1].Body
	require.Equal(t, map[string]any{"status": "active"}, body["updates"])

	require.NoError(t, repo.DeleteUser(as("admin@school.ac.th"), "new@school.ac.th"))
	require.Nil(t, remote.User("new@school.ac.th"))
}

func TestRecords(t *testing.T) {
	repo, remote := setup(t)
	ctx := as("teacher@school.ac.th")

	id, err := repo.UpsertRecord(ctx, &domain.Record{Title: "Workshop A", ActivityType: "อบรม", StartDate: "2025-01-10", Hours: 4, Status: domain.StatusDraft})
	require.NoError(t, err)
	require.Equal(t, "R1", id)

	records, err := repo.ListRecords(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "teacher@school.ac.th", records[0].OwnerEmail)

	att, err := repo.UploadFile(ctx, UploadFileRequest{
		RecordID:   id,
		FileName:   "cert.pdf",
		MimeType:   "application/pdf",
		Base64Data: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
	})
	require.NoError(t, err)
	require.Equal(t, "cert.pdf", att.FileName)
	require.NotEmpty(t, att.FileURL)

	_, err = repo.UploadFile(ctx, UploadFileRequest{FileName: "x.pdf"})
	require.ErrorIs(t, err, ErrMissingRecordID)

	submitted, err := repo.ListRecords(ctx, domain.StatusSubmitted)
	require.NoError(t, err)
	require.Empty(t, submitted)
	require.Equal(t, "submitted", remote.Calls()[len(remote.Calls())-1].Body["status"])

	require.NoError(t, repo.ReviewRecord(as("admin@school.ac.th"), id, domain.StatusRejected, "ขาดหลักฐาน"))
	require.Equal(t, domain.StatusRejected, remote.Record(id).Status)
	require.Equal(t, "ขาดหลักฐาน", remote.Record(id).ReviewComment)

	require.NoError(t, repo.DeleteRecord(ctx, id))
	require.Nil(t, remote.Record(id))

	err = repo.DeleteRecord(ctx, id)
	require.EqualError(t, err, "record not found")
}

func TestListRecordsWithoutFilterSendsNoStatus(t *testing.T) {
	repo, remote := setup(t)

	_, err := repo.ListRecords(as("teacher@school.ac.th"), "")
	require.NoError(t, err)
	require.NotContains(t, remote.Calls()[0].Body, "status")
}
