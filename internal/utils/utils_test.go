package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Title string   `validate:"required" label:"ชื่อกิจกรรม"`
	Hours *float64 `validate:"required,gte=0" label:"จำนวนชั่วโมง"`
	Link  string   `validate:"omitempty,url" label:"ลิงก์หลักฐาน"`
}

func TestValidatorThaiMessages(t *testing.T) {
	validate, trans, err := NewValidator()
	require.NoError(t, err)

	err = validate.Struct(sample{})
	require.Error(t, err)
	require.Equal(t, "กรุณากรอกชื่อกิจกรรม", TranslateFirst(err, trans))

	neg := -1.0
	err = validate.Struct(sample{Title: "x", Hours: &neg})
	require.Equal(t, "จำนวนชั่วโมงต้องไม่น้อยกว่า 0", TranslateFirst(err, trans))

	zero := 0.0
	err = validate.Struct(sample{Title: "x", Hours: &zero, Link: "not a link"})
	require.Equal(t, "ลิงก์หลักฐานต้องเป็นลิงก์ที่ถูกต้อง", TranslateFirst(err, trans))

	require.NoError(t, validate.Struct(sample{Title: "x", Hours: &zero, Link: "https://drive.google.com/x"}))
}

func TestPlainText(t *testing.T) {
	require.Equal(t, "ได้เรียนรู้ & นำไปใช้", PlainText(" <b>ได้เรียนรู้</b> & นำไปใช้<script>alert(1)</script> "))
	require.Equal(t, "", PlainText(""))
}

func TestGenerateRandomRecord(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		r := GenerateRandomRecord(now)
		require.NotEmpty(t, r.Title)
		require.NotEmpty(t, r.ActivityType)
		require.GreaterOrEqual(t, r.Hours, 1.0)
		require.LessOrEqual(t, r.Hours, 12.0)
		require.LessOrEqual(t, r.StartDate, r.EndDate)
		require.Equal(t, "draft", string(r.Status))
	}
}
