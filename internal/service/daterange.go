package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/pkordes/car-rental/backend/internal/daterange"
	"github.com/pkordes/car-rental/backend/internal/domain"
)

// MsgInvalidToken is the i18n key for a token that does not decode.
const MsgInvalidToken = "dates.invalid_token"

// DateRangeService exposes the URL token codec to handlers.
type DateRangeService struct {
	codec *daterange.Codec
}

// NewDateRangeService constructs a DateRangeService around codec.
func NewDateRangeService(codec *daterange.Codec) *DateRangeService {
	return &DateRangeService{codec: codec}
}

// Encode returns the token for start and end. Order is not validated here.
func (s *DateRangeService) Encode(start, end time.Time) (string, error) {
	if start.Before(time.UnixMilli(0)) || end.Before(time.UnixMilli(0)) {
		return "", fmt.Errorf("service.DateRangeService.Encode: %w",
			domain.NewMessageError(domain.ErrValidation, MsgInvalidToken))
	}
	return s.codec.Encode(start, end), nil
}

// Decode parses token. A checksum mismatch is not an error; it is reported
// through Decoded.ChecksumValid and logged by the codec.
func (s *DateRangeService) Decode(token string) (daterange.Decoded, error) {
	d, err := s.codec.Decode(token)
	if err != nil {
		if errors.Is(err, daterange.ErrMalformedToken) {
			return daterange.Decoded{}, fmt.Errorf("service.DateRangeService.Decode: %w",
				domain.NewMessageError(domain.ErrValidation, MsgInvalidToken))
		}
		return daterange.Decoded{}, fmt.Errorf("service.DateRangeService.Decode: %w", err)
	}
	return d, nil
}
