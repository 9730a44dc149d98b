package domain

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// ErrorKind classifies a failed API call.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindServer    ErrorKind = "server"
	KindDecode    ErrorKind = "decode"
)

// LoadState is the lifecycle of a page that loads remote data.
type LoadState string

const (
	StateLoading LoadState = "loading"
	StateReady   LoadState = "ready"
	StateFailed  LoadState = "failed"
)

// FlowState is the lifecycle of a single mutating flow.
type FlowState string

const (
	FlowIdle      FlowState = "idle"
	FlowRunning   FlowState = "running"
	FlowSucceeded FlowState = "succeeded"
	FlowFailed    FlowState = "failed"
)

// Account roles accepted at registration.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
)

// Default user-facing messages per failing operation.
const (
	MsgLoadFailed     = "Failed to load document"
	MsgUploadFailed   = "Upload failed"
	MsgSaveFailed     = "Save failed"
	MsgLoginFailed    = "Login failed"
	MsgRegisterFailed = "Registration failed"
)

// VersionRef selects a version to download: a concrete number, or the
// latest one when Number is zero.
type VersionRef struct {
	Number int
}

// Latest refers to the document's current version.
var Latest = VersionRef{}

// VersionNumber refers to a concrete version.
func VersionNumber(n int) VersionRef {
	return VersionRef{Number: n}
}

// String renders the ref as the server's version query value.
func (r VersionRef) String() string {
	if r.Number <= 0 {
		return "latest"
	}
	return strconv.Itoa(r.Number)
}

// ParseVersionRef accepts "latest", "" or a positive integer.
func ParseVersionRef(s string) (VersionRef, error) {
	if s == "" || s == "latest" {
		return Latest, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return VersionRef{}, ErrInvalidVersion
	}
	return VersionNumber(n), nil
}

// Timestamp accepts both RFC 3339 and the zone-less ISO 8601 form the
// backend emits, and always marshals as RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	for _, layout := range timestampLayouts {
		if parsed, perr := time.Parse(layout, s); perr == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.Format(time.RFC3339))), nil
}
