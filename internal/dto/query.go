package dto

// SubmitQueryRequest is the student-facing question form. Student identity
// comes from the acting claims, never from the payload.
type SubmitQueryRequest struct {
	RollNo  string `json:"rollNo" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// ReplyQueryRequest carries the staff reply text.
type ReplyQueryRequest struct {
	Reply string `json:"reply" validate:"required"`
}
