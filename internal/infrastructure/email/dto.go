package email

import "time"

// ReceiptEmailData is the payload of the receipt email task.
type ReceiptEmailData struct {
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	Reference   string    `json:"reference"`
	CourseTitle string    `json:"course_title"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Method      string    `json:"method"`
	PaidAt      time.Time `json:"paid_at"`
}

type EmailRequest struct {
	To      []string // Recipients
	Subject string
	Body    string
	IsHTML  bool
}
