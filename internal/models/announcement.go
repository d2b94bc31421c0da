package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category groups announcements for filtering on the portal.
type Category string

const (
	CategoryGeneral     Category = "General"
	CategoryExamination Category = "Examination"
	CategoryEvents      Category = "Events"
	CategoryHoliday     Category = "Holiday"
	CategoryPlacement   Category = "Placement"
)

// NormalizeCategory maps free-form category input onto the known set,
// falling back to General.
func NormalizeCategory(raw string) Category {
	switch Category(strings.TrimSpace(raw)) {
	case CategoryExamination:
		return CategoryExamination
	case CategoryEvents:
		return CategoryEvents
	case CategoryHoliday:
		return CategoryHoliday
	case CategoryPlacement:
		return CategoryPlacement
	default:
		return CategoryGeneral
	}
}

// RoleList is the canonical in-memory form of announcement targeting: an
// ordered set of distinct role tags, never empty. The wire and database
// encoding is a single comma-joined string; legacy rows and clients may also
// send a JSON array. Both forms normalize to the same canonical list on
// ingress so nothing past the repository boundary sees a malformed value.
type RoleList []string

// NormalizeRoles canonicalizes a sequence of role tags: trims whitespace,
// drops empties, deduplicates preserving first-seen order, and falls back to
// {all} when nothing remains. It is pure and total.
func NormalizeRoles(tags []string) RoleList {
	out := make(RoleList, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return RoleList{RoleAll}
	}
	return out
}

// SplitRoles normalizes the comma-joined wire encoding.
func SplitRoles(raw string) RoleList {
	return NormalizeRoles(strings.Split(raw, ","))
}

// Contains reports whether the list targets the given tag.
func (r RoleList) Contains(tag string) bool {
	for _, t := range r {
		if t == tag {
			return true
		}
	}
	return false
}

// String returns the comma-joined wire encoding.
func (r RoleList) String() string {
	return strings.Join(r, ",")
}

// UnmarshalJSON accepts an array of tags, a comma-joined string, or null.
// Any other shape widens to the {all} default rather than failing.
func (r *RoleList) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err == nil {
		*r = NormalizeRoles(tags)
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*r = SplitRoles(joined)
		return nil
	}
	*r = RoleList{RoleAll}
	return nil
}

// MarshalJSON always emits the canonical array form.
func (r RoleList) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(NormalizeRoles(r)))
}

// Value stores the comma-joined encoding.
func (r RoleList) Value() (driver.Value, error) {
	return NormalizeRoles(r).String(), nil
}

// Scan normalizes whatever the column holds into the canonical list.
func (r *RoleList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = RoleList{RoleAll}
	case string:
		*r = SplitRoles(v)
	case []byte:
		*r = SplitRoles(string(v))
	default:
		return fmt.Errorf("scan target_role: unsupported type %T", src)
	}
	return nil
}

// Attachment describes one stored file on an announcement.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// AttachmentList is always a sequence after passing any ingress boundary:
// null, absent, or scalar input coerces to an empty list.
type AttachmentList []Attachment

// UnmarshalJSON tolerates malformed attachment payloads by coercing them to
// an empty list. Attachment shape problems are normalized, never surfaced.
func (a *AttachmentList) UnmarshalJSON(data []byte) error {
	var items []Attachment
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		*a = AttachmentList{}
		return nil
	}
	*a = items
	return nil
}

// MarshalJSON never emits null for an empty list.
func (a AttachmentList) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Attachment(a))
}

// Value stores the list as JSON.
func (a AttachmentList) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Attachment(a))
}

// Scan coerces the jsonb column into a list, widening malformed content to
// an empty list.
func (a *AttachmentList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = AttachmentList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan attachments: unsupported type %T", src)
	}
	return a.UnmarshalJSON(raw)
}

// CreatedBy identifies the authoring user of an announcement. ID is the
// authorization key for deletion.
type CreatedBy struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Avatar string `db:"avatar" json:"avatar,omitempty"`
}

// Announcement is a broadcast message scoped to one or more role-tagged
// audiences. Announcements are immutable after creation; an edit is modeled
// as delete plus recreate.
type Announcement struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Message     string         `db:"message" json:"message"`
	Category    Category       `db:"category" json:"category"`
	TargetRole  RoleList       `db:"target_role" json:"targetRole"`
	Department  string         `db:"department" json:"department,omitempty"`
	CreatedBy   CreatedBy      `db:"created_by" json:"createdBy"`
	CreatorRole UserRole       `db:"creator_role" json:"creatorRole"`
	Attachments AttachmentList `db:"attachments" json:"attachments"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
}

// Canonicalize enforces the read-path invariants in place: targetRole is a
// non-empty ordered set of distinct tags and attachments is a sequence.
func (a *Announcement) Canonicalize() {
	a.TargetRole = NormalizeRoles(a.TargetRole)
	if a.Attachments == nil {
		a.Attachments = AttachmentList{}
	}
	if a.Category == "" {
		a.Category = CategoryGeneral
	}
}

// AnnouncementFilter scopes listing to the caller's audience.
type AnnouncementFilter struct {
	Roles      []UserRole
	Department string
	Category   Category
	Page       int
	PageSize   int
}
