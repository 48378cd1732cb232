package css

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadLength is returned for values which are not absolute CSS lengths.
var ErrBadLength = errors.New("bad css length")

// CSS absolute units expressed in px at 96 dpi
var unitsPx = map[string]float64{
	"px": 1,
	"pt": 96.0 / 72.0,
	"pc": 16,
	"in": 96,
	"cm": 96.0 / 2.54,
	"mm": 96.0 / 25.4,
	"q":  96.0 / 101.6,
}

// ParseLength converts an absolute length such as "18px", "0.5in" or "12" (px
// assumed) to px. "auto" and percentages are not absolute and report
// ok == false without an error.
func ParseLength(value string) (px float64, ok bool, err error) {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.TrimSpace(strings.TrimSuffix(v, "!important"))
	if v == "" || v == "auto" || v == "inherit" || v == "initial" || strings.HasSuffix(v, "%") {
		return 0, false, nil
	}

	i := len(v)
	for i > 0 && (v[i-1] < '0' || v[i-1] > '9') && v[i-1] != '.' {
		i--
	}
	num, unit := v[:i], v[i:]
	if unit == "" {
		unit = "px"
	}
	factor, known := unitsPx[unit]
	if !known {
		return 0, false, fmt.Errorf("%w: unsupported unit in %q", ErrBadLength, value)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrBadLength, value)
	}
	if n < 0 {
		return 0, false, fmt.Errorf("%w: negative length %q", ErrBadLength, value)
	}
	return n * factor, true, nil
}
