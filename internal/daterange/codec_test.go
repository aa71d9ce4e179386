package daterange_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-rental/backend/internal/daterange"
)

var (
	pickup  = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	dropoff = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
)

// goldenToken was produced by the website for pickup/dropoff above.
// Shared links depend on this exact byte sequence.
const goldenToken = "m5do2ao0-m5kt9k00-adaexm"

type countingRecorder struct{ n int }

func (r *countingRecorder) ChecksumMismatch() { r.n++ }

func TestEncode_matchesWebsiteFormat(t *testing.T) {
	assert.Equal(t, goldenToken, daterange.Encode(pickup, dropoff))
}

func TestDecode_golden(t *testing.T) {
	got, err := daterange.Decode(goldenToken)

	require.NoError(t, err)
	assert.True(t, got.ChecksumValid)
	assert.True(t, got.Start.Equal(pickup))
	assert.True(t, got.End.Equal(dropoff))
}

func TestChecksum_knownValues(t *testing.T) {
	assert.Equal(t, "0", daterange.Checksum(""))
	assert.Equal(t, "16o", daterange.Checksum("00"))
}

func TestChecksum_wrapsAt32Bits(t *testing.T) {
	// Long inputs overflow int32 many times; the result must stay a
	// non-negative base-36 number no longer than |MinInt32| in base 36.
	sum := daterange.Checksum(strings.Repeat("zz", 64))

	assert.NotContains(t, sum, "-")
	assert.LessOrEqual(t, len(sum), len("zik0zk"))
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"ordered", pickup, dropoff},
		{"reversed", dropoff, pickup},
		{"equal", pickup, pickup},
		{"epoch", time.UnixMilli(0), time.UnixMilli(1)},
		{"millisecond precision", time.UnixMilli(1735722000123), time.UnixMilli(1736154000999)},
		{"far future", time.Date(2999, 12, 31, 23, 59, 59, 999e6, time.UTC), time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := daterange.Decode(daterange.Encode(tc.start, tc.end))

			require.NoError(t, err)
			assert.True(t, got.ChecksumValid)
			assert.Equal(t, tc.start.UnixMilli(), got.Start.UnixMilli())
			assert.Equal(t, tc.end.UnixMilli(), got.End.UnixMilli())
		})
	}
}

func TestDecode_dropsSubMillisecond(t *testing.T) {
	start := pickup.Add(999 * time.Microsecond)

	got, err := daterange.Decode(daterange.Encode(start, dropoff))

	require.NoError(t, err)
	assert.True(t, got.Start.Equal(pickup))
}

func TestDecode_corruptedHashStillDecodes(t *testing.T) {
	cases := map[string]string{
		"truncated hash": goldenToken[:len(goldenToken)-1],
		"altered hash":   goldenToken[:len(goldenToken)-1] + "z",
		"empty hash":     "m5do2ao0-m5kt9k00-",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := daterange.Decode(token)

			require.NoError(t, err)
			assert.False(t, got.ChecksumValid)
			assert.True(t, got.Start.Equal(pickup))
			assert.True(t, got.End.Equal(dropoff))
		})
	}
}

func TestDecode_truncatedTimeSegmentChangesChecksum(t *testing.T) {
	// One character lost from the end segment still parses, but lands on a
	// different instant. The checksum is what flags it.
	got, err := daterange.Decode("m5do2ao0-m5kt9k0-adaexm")

	require.NoError(t, err)
	assert.False(t, got.ChecksumValid)
	assert.False(t, got.End.Equal(dropoff))
}

func TestDecode_malformed(t *testing.T) {
	cases := map[string]string{
		"empty":              "",
		"no hyphen":          "m5do2ao0m5kt9k00adaexm",
		"one hyphen":         "m5do2ao0-m5kt9k00",
		"three hyphens":      "m5do2ao0-m5kt9k00-adaexm-x",
		"empty start":        "-m5kt9k00-adaexm",
		"empty end":          "m5do2ao0--adaexm",
		"invalid start char": "m5do2a!0-m5kt9k00-adaexm",
		"invalid end char":   "m5do2ao0-m5kt 9k00-adaexm",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := daterange.Decode(token)

			assert.ErrorIs(t, err, daterange.ErrMalformedToken)
		})
	}
}

func TestCodec_Decode_logsAndRecordsMismatch(t *testing.T) {
	var buf bytes.Buffer
	rec := &countingRecorder{}
	codec := daterange.NewCodec(slog.New(slog.NewJSONHandler(&buf, nil)), rec)

	got, err := codec.Decode("m5do2ao0-m5kt9k00-zzzz")

	require.NoError(t, err)
	assert.False(t, got.ChecksumValid)
	assert.Equal(t, 1, rec.n)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "m5do2ao0-m5kt9k00-zzzz", entry["token"])
}

func TestCodec_Decode_validTokenIsSilent(t *testing.T) {
	var buf bytes.Buffer
	rec := &countingRecorder{}
	codec := daterange.NewCodec(slog.New(slog.NewJSONHandler(&buf, nil)), rec)

	_, err := codec.Decode(codec.Encode(pickup, dropoff))

	require.NoError(t, err)
	assert.Zero(t, rec.n)
	assert.Empty(t, buf.String())
}

func TestCodec_zeroValueUsable(t *testing.T) {
	var codec daterange.Codec

	got, err := codec.Decode("m5do2ao0-m5kt9k00-bad")

	require.NoError(t, err)
	assert.False(t, got.ChecksumValid)
}
