package service

import "github.com/noah-isme/dept-comm-api/internal/models"

// CanDelete reports whether the acting identity may delete the announcement.
// The only rule is creator-owns-record: the creator id must be present and
// equal the actor id. There is no role-based override, and a record with no
// creator id is never deletable, even when the actor id is also empty.
func CanDelete(actor *models.JWTClaims, announcement *models.Announcement) bool {
	if actor == nil || announcement == nil {
		return false
	}
	if announcement.CreatedBy.ID == "" || actor.UserID == "" {
		return false
	}
	return announcement.CreatedBy.ID == actor.UserID
}
