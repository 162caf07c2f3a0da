// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package api

import (
	"strconv"
	"time"
)

// maxUnixSeconds is 9999-12-31T23:59:59Z. Larger integer timestamps are
// treated as unix milliseconds.
const maxUnixSeconds = 253402300799

// Timestamp represents a time generated by the GitHub API. It can be
// serialized as an RFC3339 string, unix epoch seconds or unix epoch
// milliseconds depending on the endpoint, so it cannot be unmarshaled
// into [time.Time] directly.
type Timestamp struct {
	time.Time
}

// MarshalJSON implements [encoding/json.Marshaler]. Timestamps always
// serialize in RFC3339 form.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.Time.MarshalJSON()
}

// UnmarshalJSON implements [encoding/json.Unmarshaler]. Like [time.Time],
// null is a no-op.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	str := string(data)
	if str == "null" {
		return nil
	}

	sec, err := strconv.ParseInt(str, 10, 64)
	if err == nil {
		if sec > maxUnixSeconds {
			t.Time = time.UnixMilli(sec).In(time.UTC)
		} else {
			t.Time = time.Unix(sec, 0).In(time.UTC)
		}
		return nil
	}

	t.Time, err = time.Parse(`"`+time.RFC3339+`"`, str)
	return err
}

// Equal reports whether t and u represent the same time instant.
func (t Timestamp) Equal(u Timestamp) bool {
	return t.Time.Equal(u.Time)
}
