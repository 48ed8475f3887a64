package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"7d":  7 * 24 * time.Hour,
		"24h": 24 * time.Hour,
		"30m": 30 * time.Minute,
		"10":  10 * time.Second,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDuration("xd")
	assert.Error(t, err)
	assert.Equal(t, time.Minute, ParseDurationOr("bogus", time.Minute))
}

func TestParseSize(t *testing.T) {
	n, err := ParseSize("20MB")
	assert.NoError(t, err)
	assert.Equal(t, int64(20<<20), n)

	n, err = ParseSize("512kb")
	assert.NoError(t, err)
	assert.Equal(t, int64(512<<10), n)

	n, err = ParseSize("100")
	assert.NoError(t, err)
	assert.Equal(t, int64(100), n)

	_, err = ParseSize("")
	assert.Error(t, err)
}

func TestParseSizeRejectsNegativeAndOverflow(t *testing.T) {
	for _, s := range []string{"-5MB", "-1", "9223372036854775807GB", "8589934592GB"} {
		_, err := ParseSize(s)
		assert.Error(t, err, s)
	}

	n, err := ParseSize("8589934591GB")
	assert.NoError(t, err)
	assert.Equal(t, int64(8589934591)<<30, n)
}
