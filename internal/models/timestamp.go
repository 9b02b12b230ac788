package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// UploadTime is an upload timestamp normalized to UTC. Stored documents carry it as
// an ISO string, a {seconds, nanoseconds} timestamp object or epoch milliseconds.
// A value none of those forms can read decodes as the zero time with Raw set, so the
// event still counts toward progress.
type UploadTime struct {
	time.Time
	Raw string
}

var uploadTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type timestampObject struct {
	Seconds      *int64 `json:"seconds"`
	Nanoseconds  int64  `json:"nanoseconds"`
	USeconds     *int64 `json:"_seconds"`
	UNanoseconds int64  `json:"_nanoseconds"`
}

func NewUploadTime(t time.Time) UploadTime {
	if t.IsZero() {
		return UploadTime{}
	}
	return UploadTime{Time: t.UTC()}
}

func (t *UploadTime) UnmarshalJSON(data []byte) error {
	*t = UploadTime{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	parsed, err := decodeUploadTime(data)
	if err != nil {
		t.Raw = string(data)
		return nil
	}
	t.Time = parsed
	return nil
}

// Unreadable reports a stored value that is present but could not be read.
func (t UploadTime) Unreadable() bool {
	return t.IsZero() && t.Raw != ""
}

func decodeUploadTime(data []byte) (time.Time, error) {
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return time.Time{}, err
		}
		return ParseUploadTime(s)
	case '{':
		var obj timestampObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return time.Time{}, fmt.Errorf("upload time object: %w", err)
		}
		switch {
		case obj.Seconds != nil:
			return time.Unix(*obj.Seconds, obj.Nanoseconds).UTC(), nil
		case obj.USeconds != nil:
			return time.Unix(*obj.USeconds, obj.UNanoseconds).UTC(), nil
		}
		return time.Time{}, fmt.Errorf("upload time object without seconds: %s", data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return time.Time{}, fmt.Errorf("upload time: %w", err)
		}
		ms, err := n.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("upload time millis: %w", err)
		}
		return time.Unix(0, int64(ms*float64(time.Millisecond))).UTC(), nil
	}
}

func (t UploadTime) MarshalJSON() ([]byte, error) {
	if t.Unreadable() && json.Valid([]byte(t.Raw)) {
		return []byte(t.Raw), nil
	}
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// ParseUploadTime reads the string forms. An empty string is the zero time.
func ParseUploadTime(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range uploadTimeLayouts {
		if parsed, err := time.Parse(layout, v); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized upload time %q", value)
}
