// Package service holds the frontend workflows that sit between the pages and
// the remote API: the record save saga, review decisions and account
// administration. Every guard here runs before any remote call.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/kruchat2026/devlog/internal/domain"
)

var (
	ErrNotConfirmed    = errors.New("ยังไม่ได้ยืนยันการดำเนินการ")
	ErrSelfAction      = errors.New("ไม่สามารถดำเนินการกับบัญชีของตนเองได้")
	ErrPromptCancelled = errors.New("ยกเลิกการดำเนินการ")
	ErrRecordNotFound  = errors.New("ไม่พบบันทึก")
	ErrUserNotFound    = errors.New("ไม่พบผู้ใช้")
	ErrPendingUser     = errors.New("ต้องอนุมัติบัญชีก่อนเปลี่ยนสิทธิ์")
	ErrForbidden       = errors.New("ไม่มีสิทธิ์ดำเนินการ")
)

// Notifier publishes mail notifications. Failures are logged by the caller and
// never undo the action that triggered them.
type Notifier interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
