// Package repo contains all database access logic for the trip store.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripshare/internal/address"
	"github.com/pkordes/tripshare/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for trips.
// Every read and every update sees active (not soft-deleted) trips only.
type TripRepo interface {
	// Create inserts a trip and returns the persisted record with its owner.
	// A duplicate active trip code yields domain.ErrConflict; any other rejected
	// row yields domain.ErrConstraint.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// SoftDelete marks an active trip deleted and returns it.
	// Returns domain.ErrNotFound if no active trip has that id.
	SoftDelete(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// FindActive lists trips matching filter, ordered by start time.
	FindActive(ctx context.Context, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, error)

	// FindOneActive returns the first trip matching filter, or domain.ErrNotFound.
	FindOneActive(ctx context.Context, filter domain.TripFilter) (domain.Trip, error)

	// FindByCode returns the active trip holding code, or domain.ErrNotFound.
	FindByCode(ctx context.Context, code string) (domain.Trip, error)

	// UpdateStatus moves an active trip to a new status if the transition is allowed.
	UpdateStatus(ctx context.Context, id uuid.UUID, to domain.TripStatus) (domain.Trip, error)

	// Search returns pending trips whose addresses contain the given substrings,
	// starting inside [From, To] with at least MinSeats free seats.
	Search(ctx context.Context, c domain.SearchCriteria) ([]domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

// tripColumns selects a trip aliased t joined with its owner aliased u.
// Column order must match scanTrip.
const tripColumns = `
	t.id, t.owner_id, t.trip_code,
	t.start_address, t.start_place_id, t.start_lat, t.start_lng, t.start_geohash,
	t.end_address, t.end_place_id, t.end_lat, t.end_lng, t.end_geohash,
	t.waypoints, t.start_time, t.end_time, t.recurrence,
	t.available_seats, t.status, t.notes, t.is_deleted, t.created_at, t.updated_at,
	u.id, u.name, u.email, u.avatar`

const ownerJoin = `JOIN users u ON u.id = t.owner_id`

// Create inserts a new trip row and returns the full persisted record.
// The owner must be an active user; otherwise nothing is written and the
// error is ErrNotFound.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		WITH owner AS (
			SELECT id FROM users WHERE id = @owner_id AND is_deleted = false
		), t AS (
			INSERT INTO trips (
				owner_id, trip_code,
				start_address, start_place_id, start_lat, start_lng, start_geohash,
				end_address, end_place_id, end_lat, end_lng, end_geohash,
				waypoints, start_time, end_time, recurrence,
				available_seats, status, notes
			)
			SELECT
				owner.id, @trip_code::text,
				@start_address::text, @start_place_id::text, @start_lat::float8, @start_lng::float8, @start_geohash::text,
				@end_address::text, @end_place_id::text, @end_lat::float8, @end_lng::float8, @end_geohash::text,
				@waypoints::jsonb, @start_time::timestamptz, @end_time::timestamptz, @recurrence::jsonb,
				@available_seats::int, @status::text, @notes::text
			FROM owner
			RETURNING *
		)
		SELECT ` + tripColumns + ` FROM t ` + ownerJoin

	waypoints, recurrence, err := encodeJSONColumns(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}

	status := trip.Status
	if status == "" {
		status = domain.StatusPending
	}

	args := pgx.NamedArgs{
		"owner_id":        trip.OwnerID,
		"trip_code":       trip.TripCode,
		"start_address":   trip.Start.Address,
		"start_place_id":  trip.Start.PlaceID,
		"start_lat":       trip.Start.Coordinates.Lat,
		"start_lng":       trip.Start.Coordinates.Lng,
		"start_geohash":   trip.Start.Geohash,
		"end_address":     trip.End.Address,
		"end_place_id":    trip.End.PlaceID,
		"end_lat":         trip.End.Coordinates.Lat,
		"end_lng":         trip.End.Coordinates.Lng,
		"end_geohash":     trip.End.Geohash,
		"waypoints":       waypoints,
		"start_time":      trip.Schedule.StartTime,
		"end_time":        trip.Schedule.EndTime, // nil becomes NULL
		"recurrence":      recurrence,
		"available_seats": trip.AvailableSeats,
		"status":          string(status),
		"notes":           trip.Notes,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", domain.NotFound("user not found"))
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", mapError(err))
	}
	return result, nil
}

// SoftDelete flips is_deleted on an active trip.
func (r *pgTripRepo) SoftDelete(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	w := activeWhere().eq("t.id", "id", id)
	q := `
		WITH changed AS (
			UPDATE trips AS t
			SET is_deleted = true, updated_at = now()
			` + w.sql() + `
			RETURNING t.*
		)
		SELECT ` + tripColumns + ` FROM changed t ` + ownerJoin

	result, err := scanTrip(r.db.QueryRow(ctx, q, w.args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.SoftDelete: %w", mapError(err))
	}
	return result, nil
}

// FindActive lists active trips matching filter, earliest departure first.
func (r *pgTripRepo) FindActive(ctx context.Context, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, error) {
	w := activeWhere().filter(filter)
	w.args["limit"] = page.Limit
	w.args["offset"] = page.Offset()

	q := `SELECT ` + tripColumns + ` FROM trips t ` + ownerJoin + `
		` + w.sql() + `
		ORDER BY t.start_time ASC, t.id
		LIMIT @limit OFFSET @offset`

	trips, err := r.queryTrips(ctx, q, w.args)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.FindActive: %w", err)
	}
	return trips, nil
}

// FindOneActive returns the earliest active trip matching filter.
func (r *pgTripRepo) FindOneActive(ctx context.Context, filter domain.TripFilter) (domain.Trip, error) {
	w := activeWhere().filter(filter)
	q := `SELECT ` + tripColumns + ` FROM trips t ` + ownerJoin + `
		` + w.sql() + `
		ORDER BY t.start_time ASC, t.id
		LIMIT 1`

	result, err := scanTrip(r.db.QueryRow(ctx, q, w.args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.FindOneActive: %w", mapError(err))
	}
	return result, nil
}

// FindByCode looks up the active trip holding code.
func (r *pgTripRepo) FindByCode(ctx context.Context, code string) (domain.Trip, error) {
	t, err := r.FindOneActive(ctx, domain.TripFilter{TripCode: code})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.FindByCode: %w", err)
	}
	return t, nil
}

// UpdateStatus applies a status transition. The update is conditional on the
// status read beforehand, so a concurrent change surfaces as ErrConflict.
func (r *pgTripRepo) UpdateStatus(ctx context.Context, id uuid.UUID, to domain.TripStatus) (domain.Trip, error) {
	if !to.Valid() {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateStatus: %w",
			domain.InvalidArgument("unknown trip status %q", to))
	}

	current, err := r.FindOneActive(ctx, domain.TripFilter{ID: id})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateStatus: %w", err)
	}
	if !domain.CanTransition(current.Status, to) {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateStatus: %w",
			domain.InvalidArgument("cannot move trip from %s to %s", current.Status, to))
	}

	w := activeWhere().eq("t.id", "id", id).eq("t.status", "from", string(current.Status))
	w.args["to"] = string(to)
	q := `
		WITH changed AS (
			UPDATE trips AS t
			SET status = @to, updated_at = now()
			` + w.sql() + `
			RETURNING t.*
		)
		SELECT ` + tripColumns + ` FROM changed t ` + ownerJoin

	result, err := scanTrip(r.db.QueryRow(ctx, q, w.args))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateStatus: %w",
			domain.Conflict("trip status changed concurrently"))
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateStatus: %w", mapError(err))
	}
	return result, nil
}

// Search matches addresses by case-insensitive substring and keeps only
// pending trips departing inside the window with enough free seats whose
// owner is still an active user.
func (r *pgTripRepo) Search(ctx context.Context, c domain.SearchCriteria) ([]domain.Trip, error) {
	w := activeWhere().
		like("t.start_address", "start_pattern", c.StartAddress).
		like("t.end_address", "end_pattern", c.EndAddress).
		cmp("t.start_time", ">=", "from", c.From).
		cmp("t.start_time", "<=", "to", c.To).
		cmp("t.available_seats", ">=", "min_seats", c.MinSeats).
		eq("t.status", "status", string(domain.StatusPending)).
		eq("u.is_deleted", "owner_deleted", false)

	q := `SELECT ` + tripColumns + ` FROM trips t ` + ownerJoin + `
		` + w.sql() + `
		ORDER BY t.start_time ASC, t.id`

	trips, err := r.queryTrips(ctx, q, w.args)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.Search: %w", err)
	}
	return trips, nil
}

func (r *pgTripRepo) queryTrips(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", mapError(err))
	}
	return trips, nil
}

// where accumulates AND-ed predicates and their named arguments.
type where struct {
	clauses []string
	args    pgx.NamedArgs
}

// activeWhere starts every trip query. Nothing reads or updates a
// soft-deleted trip without going through here.
func activeWhere() *where {
	return &where{clauses: []string{"t.is_deleted = false"}, args: pgx.NamedArgs{}}
}

func (w *where) eq(column, name string, value any) *where {
	return w.cmp(column, "=", name, value)
}

func (w *where) cmp(column, op, name string, value any) *where {
	w.clauses = append(w.clauses, column+" "+op+" @"+name)
	w.args[name] = value
	return w
}

func (w *where) like(column, name, substr string) *where {
	w.clauses = append(w.clauses, column+` ILIKE @`+name+` ESCAPE '\'`)
	w.args[name] = address.ContainsPattern(substr)
	return w
}

// filter adds an equality predicate for every non-zero field of f.
func (w *where) filter(f domain.TripFilter) *where {
	if f.ID != uuid.Nil {
		w.eq("t.id", "id", f.ID)
	}
	if f.OwnerID != uuid.Nil {
		w.eq("t.owner_id", "owner_id", f.OwnerID)
	}
	if f.TripCode != "" {
		w.eq("t.trip_code", "trip_code", f.TripCode)
	}
	if f.Status != "" {
		w.eq("t.status", "status", string(f.Status))
	}
	return w
}

func (w *where) sql() string {
	return "WHERE " + strings.Join(w.clauses, " AND ")
}

// mapError translates driver errors into domain sentinels.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return domain.Conflict("trip code already in use")
		case "23514", "23502", "23503", "22P02", "22007", "22008":
			return &domain.Error{Kind: domain.ErrConstraint, Message: pgErr.Message}
		}
	}
	return err
}

func encodeJSONColumns(trip domain.Trip) (waypoints string, recurrence any, err error) {
	wp := trip.Waypoints
	if wp == nil {
		wp = []domain.Location{}
	}
	b, err := json.Marshal(wp)
	if err != nil {
		return "", nil, fmt.Errorf("encode waypoints: %w", err)
	}
	if trip.Schedule.Recurrence != nil {
		rb, err := json.Marshal(trip.Schedule.Recurrence)
		if err != nil {
			return "", nil, fmt.Errorf("encode recurrence: %w", err)
		}
		recurrence = string(rb)
	}
	return string(b), recurrence, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps one tripColumns row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t          domain.Trip
		id         pgtype.UUID
		ownerID    pgtype.UUID
		status     string
		endTime    pgtype.Timestamptz
		waypoints  []byte
		recurrence []byte
		owner      domain.OwnerProfile
		ownerRowID pgtype.UUID
	)

	err := s.Scan(
		&id, &ownerID, &t.TripCode,
		&t.Start.Address, &t.Start.PlaceID, &t.Start.Coordinates.Lat, &t.Start.Coordinates.Lng, &t.Start.Geohash,
		&t.End.Address, &t.End.PlaceID, &t.End.Coordinates.Lat, &t.End.Coordinates.Lng, &t.End.Geohash,
		&waypoints, &t.Schedule.StartTime, &endTime, &recurrence,
		&t.AvailableSeats, &status, &t.Notes, &t.IsDeleted, &t.CreatedAt, &t.UpdatedAt,
		&ownerRowID, &owner.Name, &owner.Email, &owner.Avatar,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.OwnerID = uuid.UUID(ownerID.Bytes)
	t.Status = domain.TripStatus(status)
	if endTime.Valid {
		et := endTime.Time
		t.Schedule.EndTime = &et
	}
	if len(waypoints) > 0 {
		if err := json.Unmarshal(waypoints, &t.Waypoints); err != nil {
			return domain.Trip{}, fmt.Errorf("decode waypoints: %w", err)
		}
	}
	if len(recurrence) > 0 {
		var rec domain.Recurrence
		if err := json.Unmarshal(recurrence, &rec); err != nil {
			return domain.Trip{}, fmt.Errorf("decode recurrence: %w", err)
		}
		t.Schedule.Recurrence = &rec
	}
	owner.ID = uuid.UUID(ownerRowID.Bytes)
	t.Owner = &owner
	return t, nil
}
