package dto

// CreateAnnouncementRequest binds the multipart compose form. Files ride
// alongside under the shared "files" field and are handled separately.
// TargetRole arrives in the comma-joined wire encoding.
type CreateAnnouncementRequest struct {
	Title      string `form:"title" validate:"required"`
	Message    string `form:"message" validate:"required"`
	Category   string `form:"category"`
	TargetRole string `form:"targetRole"`
	Department string `form:"department"`
}

// ListAnnouncementsRequest captures the list query parameters.
type ListAnnouncementsRequest struct {
	Category string `form:"category"`
	Page     int    `form:"page"`
	PageSize int    `form:"limit"`
}
