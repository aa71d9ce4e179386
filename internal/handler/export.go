package handler

// GET /api/v1/admin/bookings/export returns every booking matching the list
// filters as a flat table: ?format=csv for CSV, JSON otherwise.

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/car-rental/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"id", "reservation_id", "car_id", "start", "end", "days",
	"daily_rate", "total_price", "currency",
	"client_name", "client_phone", "client_email", "locale",
	"status", "created_at",
}

// ExportBookings handles GET /api/v1/admin/bookings/export.
// It accepts the same filters as ListBookings but is not paged.
func (s *Server) ExportBookings(w http.ResponseWriter, r *http.Request) {
	var format *string
	if !s.queryParam(w, r, "format", &format) {
		return
	}
	wantCSV := false
	if format != nil {
		switch *format {
		case "csv":
			wantCSV = true
		case "json", "":
		default:
			s.fieldError(w, r, "format", "request.unsupported_format")
			return
		}
	}

	f, ok := s.bookingFilter(w, r)
	if !ok {
		return
	}
	rows, err := s.bookings.Export(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantCSV {
		writeCSV(w, rows)
		return
	}
	out := make([]BookingResponse, len(rows))
	for i, b := range rows {
		out[i] = bookingToResponse(b)
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes rows as CSV with a header row.
func writeCSV(w http.ResponseWriter, rows []domain.Booking) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, b := range rows {
		//nolint:errcheck
		cw.Write(bookingToCSVRecord(b))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// bookingToCSVRecord encodes a booking as a flat string slice.
// Money columns carry two decimals; instants are RFC 3339 UTC.
func bookingToCSVRecord(b domain.Booking) []string {
	return []string{
		b.ID.String(),
		b.ReservationID,
		b.CarID.String(),
		b.Start.UTC().Format(time.RFC3339),
		b.End.UTC().Format(time.RFC3339),
		strconv.Itoa(b.Days),
		strconv.FormatFloat(b.DailyRate, 'f', 2, 64),
		strconv.FormatFloat(b.TotalPrice, 'f', 2, 64),
		b.Currency,
		b.ClientName,
		b.ClientPhone,
		b.ClientEmail,
		b.Locale,
		string(b.Status),
		b.CreatedAt.UTC().Format(time.RFC3339),
	}
}
