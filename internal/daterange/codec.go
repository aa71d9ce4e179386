// Package daterange encodes a pickup/return pair into the short token carried
// in booking URLs (?dates=<token>) and decodes it back.
//
// Token layout: "{startB36}-{endB36}-{hashB36}". Each instant is its Unix
// millisecond value in lowercase base 36. The third segment is a checksum of
// the first two segments concatenated without the hyphen.
//
// The format is byte-compatible with links already shared from the website,
// so none of the steps below may change.
package daterange

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/car-rental/backend/internal/domain"
)

// ErrMalformedToken is returned by Decode when the token does not have three
// segments or a time segment is not a base-36 integer.
var ErrMalformedToken = errors.New("daterange: malformed token")

const separator = "-"

// Decoded is the result of a successful Decode.
// ChecksumValid is false when the hash segment does not match; the instants are
// still the ones parsed from the first two segments.
type Decoded struct {
	domain.DateRange
	ChecksumValid bool
}

// MismatchRecorder is notified on every checksum mismatch.
// The metrics package satisfies it; nil disables recording.
type MismatchRecorder interface {
	ChecksumMismatch()
}

// Codec encodes and decodes date-range tokens.
// The zero value is usable and discards warnings.
type Codec struct {
	log      *slog.Logger
	recorder MismatchRecorder
}

// NewCodec constructs a Codec that logs checksum mismatches to log and reports
// them to recorder. Either argument may be nil.
func NewCodec(log *slog.Logger, recorder MismatchRecorder) *Codec {
	return &Codec{log: log, recorder: recorder}
}

// Encode returns the token for start and end. Order is not checked.
// Instants before the Unix epoch encode with a leading minus sign, which
// collides with the separator; such tokens do not decode.
func (c *Codec) Encode(start, end time.Time) string {
	return Encode(start, end)
}

// Decode parses token. A checksum mismatch is logged and recorded but is not
// an error: the parsed instants are returned with ChecksumValid=false.
func (c *Codec) Decode(token string) (Decoded, error) {
	d, err := Decode(token)
	if err != nil {
		return Decoded{}, err
	}
	if !d.ChecksumValid {
		if c != nil && c.log != nil {
			c.log.Warn("date range token checksum mismatch",
				"token", token,
				"start", d.Start,
				"end", d.End,
			)
		}
		if c != nil && c.recorder != nil {
			c.recorder.ChecksumMismatch()
		}
	}
	return d, nil
}

// Encode is the stateless form of Codec.Encode.
func Encode(start, end time.Time) string {
	s := strconv.FormatInt(start.UnixMilli(), 36)
	e := strconv.FormatInt(end.UnixMilli(), 36)
	return s + separator + e + separator + Checksum(s+e)
}

// Decode is the stateless form of Codec.Decode; it never logs.
func Decode(token string) (Decoded, error) {
	parts := strings.Split(token, separator)
	if len(parts) != 3 {
		return Decoded{}, fmt.Errorf("%w: want 3 segments, got %d", ErrMalformedToken, len(parts))
	}

	startMs, err := strconv.ParseInt(parts[0], 36, 64)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: start segment: %v", ErrMalformedToken, err)
	}
	endMs, err := strconv.ParseInt(parts[1], 36, 64)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: end segment: %v", ErrMalformedToken, err)
	}

	return Decoded{
		DateRange: domain.DateRange{
			Start: time.UnixMilli(startMs).UTC(),
			End:   time.UnixMilli(endMs).UTC(),
		},
		ChecksumValid: Checksum(parts[0]+parts[1]) == parts[2],
	}, nil
}

// Checksum returns the base-36 rolling hash of s.
//
// The accumulator is an int32 that wraps on overflow at every step:
// h = (h << 5) - h + c. The absolute value is taken in 64 bits so the minimum
// int32 maps to 2147483648 rather than overflowing.
//
// This is a corruption check for truncated or mistyped links. It collides
// easily and must not be used to authenticate a token.
func Checksum(s string) string {
	var h int32
	for i := 0; i < len(s); i++ {
		h = (h << 5) - h + int32(s[i])
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return strconv.FormatInt(abs, 36)
}
