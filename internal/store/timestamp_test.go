package store_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/radieske/pub-bets/internal/store"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 11, 8, 19, 30, 15, 0, time.UTC)
	ms := want.UnixMilli()

	tests := []struct {
		name string
		raw  string
	}{
		{"epoch millis", "1762630215000"},
		{"epoch millis as string", `"1762630215000"`},
		{"rfc3339", `"2025-11-08T19:30:15Z"`},
		{"rfc3339 with offset", `"2025-11-08T16:30:15-03:00"`},
		{"seconds object", `{"seconds":1762630215,"nanoseconds":0}`},
		{"admin sdk object", `{"_seconds":1762630215,"_nanoseconds":0}`},
	}

	if ms != 1762630215000 {
		t.Fatalf("fixture drift: %d", ms)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ParseTimestamp(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("ParseTimestamp(%s): %v", tt.raw, err)
			}
			if !got.Equal(want) || got.Location() != time.UTC {
				t.Errorf("ParseTimestamp(%s) = %v, want %v", tt.raw, got, want)
			}
		})
	}
}

func TestParseTimestampRejects(t *testing.T) {
	for _, raw := range []string{``, `null`, `"yesterday"`, `{"foo":1}`, `true`} {
		if _, err := store.ParseTimestamp(json.RawMessage(raw)); !errors.Is(err, store.ErrBadTimestamp) {
			t.Errorf("ParseTimestamp(%q) err = %v, want ErrBadTimestamp", raw, err)
		}
	}
}
