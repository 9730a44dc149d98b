package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"server detail", &APIError{Kind: KindServer, Status: 403, Message: "Not allowed"}, "Not allowed"},
		{"wrapped server detail", fmt.Errorf("op: %w", &APIError{Kind: KindServer, Status: 400, Message: "bad"}), "bad"},
		{"status only", &APIError{Kind: KindServer, Status: 500}, "request failed with status code 500"},
		{"transport", &APIError{Kind: KindTransport, Err: errors.New("connection refused")}, "network error: connection refused"},
		{"validation", ErrNoFile, "please choose a file"},
		{"busy", ErrBusy, ErrBusy.Error()},
		{"unknown", errors.New("boom"), "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err, "fallback"))
		})
	}
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(fmt.Errorf("x: %w", ErrTitleRequired)))
	assert.True(t, IsValidation(ErrInvalidRole))
	assert.False(t, IsValidation(ErrNotPermitted))
}

func TestVersionRef(t *testing.T) {
	assert.Equal(t, "latest", Latest.String())
	assert.Equal(t, "3", VersionNumber(3).String())

	ref, err := ParseVersionRef("")
	require.NoError(t, err)
	assert.Equal(t, Latest, ref)

	ref, err = ParseVersionRef("4")
	require.NoError(t, err)
	assert.Equal(t, 4, ref.Number)

	for _, bad := range []string{"0", "-1", "v2", "1.5"} {
		_, err := ParseVersionRef(bad)
		assert.ErrorIs(t, err, ErrInvalidVersion, bad)
	}
}

func TestTimestamp(t *testing.T) {
	var v struct {
		A Timestamp  `json:"a"`
		B Timestamp  `json:"b"`
		C *Timestamp `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2024-05-01T10:20:30Z","b":"2024-05-01T10:20:30.123456","c":null}`), &v))
	assert.Equal(t, 2024, v.A.Year())
	assert.Equal(t, 123456000, v.B.Nanosecond())
	assert.Nil(t, v.C)

	out, err := json.Marshal(Timestamp{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-02T03:04:05Z"`, string(out))

	var bad Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &bad))
}

func TestDraftStateUpdate(t *testing.T) {
	d := DraftState{Title: "T", Tags: []string{"a", "a", "b"}, DepartmentIDs: []int64{2, 2}}
	u := d.Update()
	assert.Equal(t, DocumentUpdate{Title: "T", Tags: []string{"a", "b"}, PermissionDepartmentIDs: []int64{2}}, u)
	assert.False(t, u.IsEmpty())
	assert.True(t, DraftState{}.Update().IsEmpty())

	raw, err := json.Marshal(DocumentUpdate{Description: "d"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":"d"}`, string(raw))
}

func TestLists(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitCSV(" a, ,b ,"))
	assert.Empty(t, SplitCSV(""))

	ids, err := ParseIDList("1, 2,3")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	_, err = ParseIDList("1,x")
	assert.Error(t, err)
}
