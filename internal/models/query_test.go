package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryMatchesSearch(t *testing.T) {
	q := Query{Student: "Priya Sharma", Subject: "Algorithms", Message: "When is the retest?"}

	assert.True(t, q.MatchesSearch(""))
	assert.True(t, q.MatchesSearch("  "))
	assert.True(t, q.MatchesSearch("priya"))
	assert.True(t, q.MatchesSearch("ALGO"))
	assert.True(t, q.MatchesSearch("Sharma"))

	// message content is deliberately outside the search scope
	assert.False(t, q.MatchesSearch("retest"))
	assert.False(t, q.MatchesSearch("aditya"))
}
