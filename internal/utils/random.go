package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kruchat2026/devlog/internal/domain"
)

var titlePrefixes = []string{
	"อบรมเชิงปฏิบัติการ",
	"สัมมนาวิชาการ",
	"ชุมชนการเรียนรู้ทางวิชาชีพ",
	"หลักสูตรออนไลน์",
	"ศึกษาดูงาน",
}

var titleTopics = []string{
	"Active Learning",
	"การวัดและประเมินผล",
	"การจัดการชั้นเรียน",
	"Coding สำหรับครู",
	"สะเต็มศึกษา",
	"การสอนภาษาอังกฤษเพื่อการสื่อสาร",
	"จิตวิทยาวัยรุ่น",
}

var organizers = []string{
	"สพฐ.",
	"สำนักงานเขตพื้นที่การศึกษา",
	"มหาวิทยาลัยราชภัฏ",
	"สสวท.",
	"โรงเรียน",
}

func GenerateRandomTitle() string {
	return titlePrefixes[rand.Intn(len(titlePrefixes))] + " " + titleTopics[rand.Intn(len(titleTopics))]
}

// GenerateRandomHours returns 1 to 12 hours in half-hour steps.
func GenerateRandomHours() float64 {
	return float64(rand.Intn(23)+2) / 2
}

func GenerateRandomRecord(from time.Time) *domain.Record {
	start := from.AddDate(0, 0, -rand.Intn(365))
	end := start.AddDate(0, 0, rand.Intn(3))

	return &domain.Record{
		Title:        GenerateRandomTitle(),
		ActivityType: domain.ActivityTypes[rand.Intn(len(domain.ActivityTypes))],
		Format:       domain.Formats[rand.Intn(len(domain.Formats))],
		StartDate:    start.Format(time.DateOnly),
		EndDate:      end.Format(time.DateOnly),
		Organizer:    organizers[rand.Intn(len(organizers))],
		Hours:        GenerateRandomHours(),
		ExpectedGoal: fmt.Sprintf("นำความรู้ไปปรับใช้ในรายวิชา %d", rand.Intn(6)+1),
		Status:       domain.StatusDraft,
	}
}
