package domain

import "time"

// ExportRow is one trip in an owner's export: a flat view with addresses in
// place of geocoded locations. Waypoints keep route order.
type ExportRow struct {
	TripCode       string
	Status         TripStatus
	StartAddress   string
	EndAddress     string
	Waypoints      []string
	StartTime      time.Time
	EndTime        *time.Time // nil for open-ended trips
	AvailableSeats int
	Notes          string
}

// NewExportRow flattens t.
func NewExportRow(t Trip) ExportRow {
	wps := make([]string, 0, len(t.Waypoints))
	for _, w := range t.Waypoints {
		wps = append(wps, w.Address)
	}
	return ExportRow{
		TripCode:       t.TripCode,
		Status:         t.Status,
		StartAddress:   t.Start.Address,
		EndAddress:     t.End.Address,
		Waypoints:      wps,
		StartTime:      t.Schedule.StartTime,
		EndTime:        t.Schedule.EndTime,
		AvailableSeats: t.AvailableSeats,
		Notes:          t.Notes,
	}
}
