package source

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// CF-convention time coordinates are numeric offsets from an epoch declared
// in the variable's `units` attribute, e.g. "days since 1950-01-01 00:00:00".

var cfUnitSeconds = map[string]float64{
	"seconds": 1, "second": 1, "secs": 1, "sec": 1, "s": 1,
	"minutes": 60, "minute": 60, "mins": 60, "min": 60,
	"hours": 3600, "hour": 3600, "hrs": 3600, "hr": 3600, "h": 3600,
	"days": 86400, "day": 86400, "d": 86400,
}

var cfEpochLayouts = []string{
	"2006-01-02 15:04:05.999999999 -07:00",
	"2006-01-02 15:04:05.999999999Z",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseCFUnits splits a CF units attribute into a per-step scale in seconds
// and the epoch the offsets count from
func ParseCFUnits(units string) (scale float64, epoch time.Time, err error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("time units `%s` lack a `since` clause", units)
	}
	unit := strings.ToLower(strings.TrimSpace(parts[0]))
	scale, known := cfUnitSeconds[unit]
	if !known {
		return 0, time.Time{}, fmt.Errorf("unrecognized time unit `%s`", unit)
	}
	epochStr := strings.TrimSpace(parts[1])
	for _, layout := range cfEpochLayouts {
		if epoch, err = time.Parse(layout, epochStr); err == nil {
			return scale, epoch.UTC(), nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("epoch `%s` could not be parsed by any expected time format", epochStr)
}

// DecodeCFTimes converts numeric time-coordinate values to UTC timestamps
func DecodeCFTimes(values []float64, units string) ([]time.Time, error) {
	scale, epoch, err := ParseCFUnits(units)
	if err != nil {
		return nil, err
	}
	decoded := make([]time.Time, len(values))
	for i, value := range values {
		seconds := value * scale
		whole, frac := math.Modf(seconds)
		decoded[i] = epoch.Add(time.Duration(whole)*time.Second + time.Duration(frac*float64(time.Second))).UTC()
	}
	return decoded, nil
}
