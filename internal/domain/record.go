package domain

import (
	"sort"
	"strings"
)

type RecordStatus string

const (
	StatusDraft     RecordStatus = "draft"
	StatusSubmitted RecordStatus = "submitted"
	StatusApproved  RecordStatus = "approved"
	StatusRejected  RecordStatus = "rejected"
)

var statusLabels = map[RecordStatus]string{
	StatusDraft:     "ร่าง",
	StatusSubmitted: "รอตรวจ",
	StatusApproved:  "อนุมัติแล้ว",
	StatusRejected:  "ไม่ผ่าน",
}

func (s RecordStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

type Format string

const (
	FormatOnsite Format = "onsite"
	FormatOnline Format = "online"
	FormatHybrid Format = "hybrid"
)

var ActivityTypes = []string{
	"อบรม",
	"สัมมนา",
	"PLC",
	"ศึกษาดูงาน",
	"เรียนออนไลน์",
	"วิจัย",
	"อื่น ๆ",
}

var Formats = []Format{FormatOnsite, FormatOnline, FormatHybrid}

func (f Format) Label() string {
	switch f {
	case FormatOnsite:
		return "ออนไซต์"
	case FormatOnline:
		return "ออนไลน์"
	case FormatHybrid:
		return "ไฮบริด"
	}
	return string(f)
}

type Attachment struct {
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
}

type Record struct {
	RecordID      string       `json:"recordId,omitempty"`
	OwnerEmail    string       `json:"ownerEmail,omitempty"`
	Title         string       `json:"title"`
	ActivityType  string       `json:"activityType"`
	Format        Format       `json:"format"`
	StartDate     string       `json:"startDate"`
	EndDate       string       `json:"endDate"`
	Organizer     string       `json:"organizer"`
	Hours         float64      `json:"hours"`
	ExpectedGoal  string       `json:"expectedGoal"`
	Reflection    string       `json:"reflection"`
	Status        RecordStatus `json:"status"`
	Attachments   []Attachment `json:"attachments"`
	ReviewComment string       `json:"reviewComment,omitempty"`
}

// Editable reports whether the owner may still change the record.
func (r *Record) Editable() bool {
	return r.Status == StatusDraft || r.Status == StatusRejected
}

// EditableBy also checks ownership.
func (r *Record) EditableBy(email string) bool {
	return r.Editable() && strings.EqualFold(r.OwnerEmail, email)
}

func (r *Record) Attachment() *Attachment {
	for i := range r.Attachments {
		if r.Attachments[i].FileURL != "" {
			return &r.Attachments[i]
		}
	}
	return nil
}

type Stats struct {
	ApprovedHours  float64
	SubmittedCount int
	ApprovedCount  int
}

func ComputeStats(records []*Record) Stats {
	s := Stats{}
	for _, r := range records {
		switch r.Status {
		case StatusApproved:
			s.ApprovedHours += r.Hours
			s.ApprovedCount++
		case StatusSubmitted:
			s.SubmittedCount++
		}
	}
	return s
}

func FindRecord(records []*Record, id string) *Record {
	for _, r := range records {
		if r.RecordID == id {
			return r
		}
	}
	return nil
}

// FilterRecords keeps records whose title or organizer contains q, ignoring case.
func FilterRecords(records []*Record, q string) []*Record {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return records
	}
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Organizer), q) {
			out = append(out, r)
		}
	}
	return out
}

// RecentRecords returns up to n records, latest start date first.
func RecentRecords(records []*Record, n int) []*Record {
	out := make([]*Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate > out[j].StartDate
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
