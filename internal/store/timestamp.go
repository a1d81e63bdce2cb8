package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var ErrBadTimestamp = errors.New("unrecognized timestamp")

// ParseTimestamp normaliza os formatos de data encontrados em exports antigos:
// epoch em milissegundos (número ou string numérica), RFC3339, ou objeto
// {seconds, nanoseconds}. Tudo sai em UTC.
func ParseTimestamp(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, ErrBadTimestamp
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrBadTimestamp, err)
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
		}
		return t.UTC(), nil

	case '{':
		var obj struct {
			Seconds     *int64 `json:"seconds"`
			Nanoseconds int64  `json:"nanoseconds"`
			// formato serializado pelo SDK admin
			LegacySeconds *int64 `json:"_seconds"`
			LegacyNanos   int64  `json:"_nanoseconds"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrBadTimestamp, err)
		}
		switch {
		case obj.Seconds != nil:
			return time.Unix(*obj.Seconds, obj.Nanoseconds).UTC(), nil
		case obj.LegacySeconds != nil:
			return time.Unix(*obj.LegacySeconds, obj.LegacyNanos).UTC(), nil
		}
		return time.Time{}, ErrBadTimestamp

	default:
		var ms float64
		if err := json.Unmarshal(raw, &ms); err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrBadTimestamp, err)
		}
		return time.UnixMilli(int64(ms)).UTC(), nil
	}
}
