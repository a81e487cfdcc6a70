package domain

const (
	MailRecordReviewed  = "record_reviewed"
	MailAccountApproved = "account_approved"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type RecordReviewedMailData struct {
	Title    string  `json:"title"`
	Decision string  `json:"decision"`
	Comment  string  `json:"comment"`
	Hours    float64 `json:"hours"`
	AppURL   string  `json:"appUrl"`
}

type AccountApprovedMailData struct {
	Name   string `json:"name"`
	AppURL string `json:"appUrl"`
}
