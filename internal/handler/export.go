package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/tripshare/internal/domain"
	"github.com/pkordes/tripshare/internal/middleware"
)

// csvHeaders is the first row of every CSV export.
var csvHeaders = []string{
	"trip_code", "status", "start_address", "end_address", "waypoints",
	"start_time", "end_time", "available_seats", "notes",
}

type exportRow struct {
	TripCode       string            `json:"trip_code"`
	Status         domain.TripStatus `json:"status"`
	StartAddress   string            `json:"start_address"`
	EndAddress     string            `json:"end_address"`
	Waypoints      []string          `json:"waypoints"`
	StartTime      time.Time         `json:"start_time"`
	EndTime        *time.Time        `json:"end_time,omitempty"`
	AvailableSeats int               `json:"available_seats"`
	Notes          string            `json:"notes,omitempty"`
}

type exportList struct {
	Data []exportRow `json:"data"`
}

// ExportMyTrips handles GET /trips/mine/export?format=json|csv.
// JSON is the default.
func (s *Server) ExportMyTrips(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		badRequest(w, "format must be json or csv")
		return
	}

	rows, err := s.trips.ExportOwnerTrips(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format == "csv" {
		writeCSV(w, rows)
		return
	}
	out := make([]exportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, exportRow(row))
	}
	writeJSON(w, http.StatusOK, exportList{Data: out})
}

// writeCSV renders rows with a header line. Waypoints within a row are
// joined with "|" to keep each trip on one line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, row := range rows {
		//nolint:errcheck
		cw.Write(csvRecord(row))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func csvRecord(r domain.ExportRow) []string {
	return []string{
		r.TripCode,
		string(r.Status),
		r.StartAddress,
		r.EndAddress,
		strings.Join(r.Waypoints, "|"),
		r.StartTime.UTC().Format(time.RFC3339),
		formatOptionalTime(r.EndTime),
		strconv.Itoa(r.AvailableSeats),
		r.Notes,
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
