package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCFUnits(t *testing.T) {
	// Tested code
	scale, epoch, err := ParseCFUnits("days since 1950-01-01 00:00:00")

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, 86400.0, scale)
	assert.Equal(t, time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), epoch)
}

func TestParseCFUnits_BareDateEpoch(t *testing.T) {
	// Tested code
	scale, epoch, err := ParseCFUnits("hours since 2000-01-01")

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, 3600.0, scale)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), epoch)
}

func TestParseCFUnits_Failures(t *testing.T) {
	// Mock
	inputs := []string{
		"days",                      // no since clause
		"fortnights since 2000-01-01", // unknown unit
		"days since yesterday",      // unparseable epoch
		"",
	}

	for _, input := range inputs {
		// Tested code
		_, _, err := ParseCFUnits(input)

		// Asserts
		assert.NotNil(t, err, "expected failure for `%s`", input)
	}
}

func TestDecodeCFTimes_Days(t *testing.T) {
	// Tested code
	decoded, err := DecodeCFTimes([]float64{0, 365}, "days since 2020-01-01")

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), decoded[0])
	assert.Equal(t, time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), decoded[1])
}

func TestDecodeCFTimes_SecondsWithFraction(t *testing.T) {
	// Tested code
	decoded, err := DecodeCFTimes([]float64{1.5}, "seconds since 1970-01-01 00:00:00")

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, time.Date(1970, 1, 1, 0, 0, 1, 500000000, time.UTC), decoded[0])
}

func TestDecodeCFTimes_HoursSinceOffsetEpoch(t *testing.T) {
	// Tested code
	decoded, err := DecodeCFTimes([]float64{24}, "hours since 1950-01-01 00:00:00 +00:00")

	// Asserts
	assert.Nil(t, err)
	assert.Equal(t, time.Date(1950, 1, 2, 0, 0, 0, 0, time.UTC), decoded[0])
}
