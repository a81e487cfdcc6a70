package notify

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"

	"github.com/kruchat2026/devlog/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var ErrUnknownType = errors.New("unsupported mail type")

type envelope struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// Render decodes a queued message and returns recipient, subject and HTML body.
func Render(body []byte) (to, subject, html string, err error) {
	env := envelope{}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", "", "", err
	}

	var (
		name string
		data any
	)
	switch env.Type {
	case domain.MailRecordReviewed:
		d := domain.RecordReviewedMailData{}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return "", "", "", err
		}
		name, data = "record_reviewed.html", d
		subject = "ผลการตรวจบันทึก: " + d.Title
	case domain.MailAccountApproved:
		d := domain.AccountApprovedMailData{}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return "", "", "", err
		}
		name, data = "account_approved.html", d
		subject = "บัญชีของคุณได้รับการอนุมัติแล้ว"
	default:
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	buf := &bytes.Buffer{}
	if err := templates.ExecuteTemplate(buf, name, data); err != nil {
		return "", "", "", err
	}
	return env.To, subject, buf.String(), nil
}

// BuildMessage turns a queued message into a mail ready to send.
func BuildMessage(from string, body []byte) (*mail.Msg, error) {
	to, subject, html, err := Render(body)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, err
	}
	if err := msg.To(to); err != nil {
		return nil, err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)
	return msg, nil
}
