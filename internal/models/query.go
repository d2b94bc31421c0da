package models

import (
	"strings"
	"time"
)

// QueryStatus tracks the lifecycle of a student query thread.
type QueryStatus string

const (
	QueryStatusPending QueryStatus = "pending"
	QueryStatusReplied QueryStatus = "replied"
)

// Query is one student-submitted question paired with at most one staff
// reply. Status is replied iff the reply text is non-empty; the transition
// pending to replied is one-way.
type Query struct {
	ID        string      `db:"id" json:"id"`
	Student   string      `db:"student" json:"student"`
	RollNo    string      `db:"roll_no" json:"rollNo"`
	Subject   string      `db:"subject" json:"subject"`
	Message   string      `db:"message" json:"message"`
	Status    QueryStatus `db:"status" json:"status"`
	Reply     string      `db:"reply" json:"reply,omitempty"`
	Date      time.Time   `db:"date" json:"date"`
	RepliedAt *time.Time  `db:"replied_at" json:"repliedAt,omitempty"`
}

// MatchesSearch reports whether the thread matches a case-insensitive
// substring search over the student and subject fields only. The empty term
// matches everything.
func (q Query) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(q.Student), term) ||
		strings.Contains(strings.ToLower(q.Subject), term)
}
