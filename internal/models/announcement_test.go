package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRolesDeduplicatesPreservingOrder(t *testing.T) {
	assert.Equal(t, RoleList{"a", "b"}, NormalizeRoles([]string{"a", "b", "a"}))
	assert.Equal(t, RoleList{"faculty", "student"}, NormalizeRoles([]string{" faculty ", "student", "faculty", ""}))
}

func TestNormalizeRolesFallsBackToAll(t *testing.T) {
	assert.Equal(t, RoleList{RoleAll}, NormalizeRoles(nil))
	assert.Equal(t, RoleList{RoleAll}, NormalizeRoles([]string{}))
	assert.Equal(t, RoleList{RoleAll}, NormalizeRoles([]string{"", "  ", ""}))
}

func TestSplitRoles(t *testing.T) {
	assert.Equal(t, RoleList{"a", "b"}, SplitRoles("a, b, a"))
	assert.Equal(t, RoleList{RoleAll}, SplitRoles(""))
	assert.Equal(t, RoleList{RoleAll}, SplitRoles(" , ,"))
}

func TestRoleListUnmarshalJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want RoleList
	}{
		{"array", `["faculty","student","faculty"]`, RoleList{"faculty", "student"}},
		{"joined string", `"faculty, hod"`, RoleList{"faculty", "hod"}},
		{"empty string", `""`, RoleList{RoleAll}},
		{"null", `null`, RoleList{RoleAll}},
		{"number widens to default", `42`, RoleList{RoleAll}},
		{"object widens to default", `{"role":"faculty"}`, RoleList{RoleAll}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got RoleList
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRoleListMarshalJSONAlwaysArray(t *testing.T) {
	data, err := json.Marshal(RoleList{"faculty", "faculty", ""})
	require.NoError(t, err)
	assert.JSONEq(t, `["faculty"]`, string(data))

	data, err = json.Marshal(RoleList(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `["all"]`, string(data))
}

func TestRoleListValueAndScan(t *testing.T) {
	v, err := RoleList{"faculty", "student"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "faculty,student", v)

	var scanned RoleList
	require.NoError(t, scanned.Scan("faculty, student, faculty"))
	assert.Equal(t, RoleList{"faculty", "student"}, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.Equal(t, RoleList{RoleAll}, scanned)

	require.NoError(t, scanned.Scan([]byte("hod")))
	assert.Equal(t, RoleList{"hod"}, scanned)

	assert.Error(t, scanned.Scan(12))
}

func TestRoleListContains(t *testing.T) {
	list := RoleList{"faculty", "hod"}
	assert.True(t, list.Contains("hod"))
	assert.False(t, list.Contains("student"))
}

func TestAttachmentListUnmarshalCoercesMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"valid list", `[{"name":"a.pdf","url":"/files/a.pdf","type":"application/pdf"}]`, 1},
		{"null", `null`, 0},
		{"scalar", `"oops"`, 0},
		{"object", `{"name":"a.pdf"}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got AttachmentList
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &got))
			require.NotNil(t, got)
			assert.Len(t, got, tc.want)
		})
	}
}

func TestAttachmentListMarshalNeverNull(t *testing.T) {
	data, err := json.Marshal(AttachmentList(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestAttachmentListScan(t *testing.T) {
	var list AttachmentList
	require.NoError(t, list.Scan([]byte(`[{"name":"syllabus.pdf","url":"/files/syllabus.pdf","type":"application/pdf"}]`)))
	require.Len(t, list, 1)
	assert.Equal(t, "syllabus.pdf", list[0].Name)

	require.NoError(t, list.Scan(nil))
	assert.Empty(t, list)

	require.NoError(t, list.Scan("not json"))
	assert.Empty(t, list)

	assert.Error(t, list.Scan(3.14))
}

func TestAnnouncementCanonicalize(t *testing.T) {
	a := Announcement{Title: "Exam schedule"}
	a.Canonicalize()
	assert.Equal(t, RoleList{RoleAll}, a.TargetRole)
	assert.NotNil(t, a.Attachments)
	assert.Equal(t, CategoryGeneral, a.Category)
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, CategoryExamination, NormalizeCategory(" Examination "))
	assert.Equal(t, CategoryGeneral, NormalizeCategory("unknown"))
	assert.Equal(t, CategoryGeneral, NormalizeCategory(""))
}
