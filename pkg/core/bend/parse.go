package bend

import (
	"regexp"
	"strconv"
	"strings"
)

// ParseDecimal parses a user-entered number, accepting comma as the
// decimal separator. Returns ok=false for a blank field and an error
// for text that is neither blank nor numeric.
func ParseDecimal(s string) (value float64, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// IsBlank reports whether a field holds no input at all.
func IsBlank(s string) bool { return strings.TrimSpace(s) == "" }

var channelNumber = regexp.MustCompile(`\d+\.?\d*`)

// ChannelNominal extracts the numeric die opening from a channel
// designation such as "35" or "50R8". ok is false when the value
// carries no digits.
func ChannelNominal(value string) (float64, bool) {
	m := channelNumber.FindString(value)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
