package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/EDITO-Infra/makestac/model"
	"github.com/EDITO-Infra/makestac/source"
)

// promptAttempts bounds how often a malformed datetime may be retyped per field
const promptAttempts = 3

// promptTemporalRange asks the operator for a UTC start/end pair on stdout
// and blocks on stdin. Nothing else is in flight while it waits.
func promptTemporalRange(in io.Reader, out io.Writer) (*model.TemporalRange, error) {
	fmt.Fprintln(out, "No temporal information found in the source. Both start and end are required.")
	reader := bufio.NewReader(in)

	start, err := promptDatetime(reader, out, "start")
	if err != nil {
		return nil, err
	}
	end, err := promptDatetime(reader, out, "end")
	if err != nil {
		return nil, err
	}
	return model.NewTemporalRange(start, end)
}

func promptDatetime(reader *bufio.Reader, out io.Writer, field string) (time.Time, error) {
	for attempt := 0; attempt < promptAttempts; attempt++ {
		fmt.Fprintf(out, "Enter %s datetime (ISO format UTC, e.g. 2023-01-01T00:00:00Z or 2023-01-01): ", field)
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if err != nil && line == "" {
			return time.Time{}, &source.TemporalInputError{Reason: field + " input abandoned"}
		}
		if line == "" {
			fmt.Fprintf(out, "The %s datetime is required.\n", field)
			continue
		}
		parsed, parseErr := model.ParseUTCDatetime(line)
		if parseErr != nil {
			fmt.Fprintln(out, parseErr.Error())
			continue
		}
		return parsed, nil
	}
	return time.Time{}, &source.TemporalInputError{
		Reason: fmt.Sprintf("no valid %s datetime after %d attempts", field, promptAttempts),
	}
}
