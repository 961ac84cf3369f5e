package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/tripshare/internal/domain"
)

// exportPageSize is the page size used to walk an owner's trips.
const exportPageSize = 100

// ExportOwnerTrips returns one row per active trip of the user, earliest
// departure first. Always returns a non-nil slice.
func (s *TripService) ExportOwnerTrips(ctx context.Context, userID string) ([]domain.ExportRow, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ExportOwnerTrips: %w",
			domain.InvalidArgument("user id is not a valid identifier"))
	}

	rows := []domain.ExportRow{}
	for page := 1; ; page++ {
		trips, err := s.repo.FindActive(ctx, domain.TripFilter{OwnerID: ownerID},
			domain.PaginationParams{Page: page, Limit: exportPageSize})
		if err != nil {
			return nil, fmt.Errorf("service.TripService.ExportOwnerTrips: %w", err)
		}
		for _, t := range trips {
			rows = append(rows, domain.NewExportRow(t))
		}
		if len(trips) < exportPageSize {
			return rows, nil
		}
	}
}
