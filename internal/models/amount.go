package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseLeadingInt reads an integer the way a browser's parseInt(s, 10) does:
// leading whitespace is skipped, an optional sign is accepted, and the longest
// run of decimal digits that follows is used. Anything after the digits is
// ignored. ok is false when no digits are present.
//
// Values that do not fit in an int64 saturate to math.MaxInt64 / math.MinInt64.
func ParseLeadingInt(raw string) (value int64, ok bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		if negative {
			return math.MinInt64, true
		}
		return math.MaxInt64, true
	}
	if negative {
		n = -n
	}
	return n, true
}

// RawAmount is user input destined for ParseLeadingInt. It accepts both JSON
// strings and JSON numbers so form fields can be forwarded as-is.
type RawAmount string

func (a *RawAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = RawAmount(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or number: %w", err)
	}
	*a = RawAmount(n.String())
	return nil
}

func (a RawAmount) String() string {
	return string(a)
}
