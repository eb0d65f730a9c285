package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// STAC temporal properties do not adhere to a single wire shape: catalog
// tooling emits second-precision UTC strings, while operators type anything
// from bare dates to full offsets. Everything accepted here is normalized to
// the standard layout below before it reaches an Item.

// StandardTimeLayout is the format used for every temporal property emitted by this pipeline
const StandardTimeLayout = "2006-01-02T15:04:05Z"

var bareDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
var utcDatetimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|\+00:00)$`)

// ParseUTCDatetime parses an operator-supplied datetime string. Two shapes are
// accepted: a full ISO-8601 datetime with an explicit UTC marker (`Z` or
// `+00:00`), or a bare `YYYY-MM-DD` date, which is expanded to midnight UTC.
// Anything else, including datetimes with a missing or non-UTC offset, is an error.
func ParseUTCDatetime(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if bareDatePattern.MatchString(input) {
		input += "T00:00:00Z"
	}
	if !utcDatetimePattern.MatchString(input) {
		return time.Time{}, fmt.Errorf("datetime `%s` is not UTC ISO-8601; expected YYYY-MM-DDTHH:MM:SSZ, YYYY-MM-DDTHH:MM:SS+00:00 or YYYY-MM-DD", input)
	}
	if strings.HasSuffix(input, "+00:00") {
		input = strings.TrimSuffix(input, "+00:00") + "Z"
	}
	parsed, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return time.Time{}, fmt.Errorf("datetime `%s` could not be parsed: %v", input, err)
	}
	return parsed.UTC(), nil
}

// FormatUTC renders a timestamp in the standard STAC layout
func FormatUTC(t time.Time) string {
	return t.UTC().Format(StandardTimeLayout)
}

// IsUTCDatetime reports whether a serialized temporal property carries an
// explicit UTC marker, which every Item produced by this pipeline must
func IsUTCDatetime(value string) bool {
	return utcDatetimePattern.MatchString(value)
}
