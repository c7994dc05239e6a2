package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

const bookingColumns = `b.id, b.item_id, COALESCE(i.name, ''), COALESCE(i.owner_id, 0),
                 b.renter_id, b.start_date, b.end_date, b.status, b.version,
                 b.created_at, b.updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID, &b.ItemID, &b.ItemName, &b.OwnerID,
		&b.RenterID, &b.Start, &b.End, &b.Status, &b.Version,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (item_id, renter_id, start_date, end_date, status, version, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.ItemID,
		booking.RenterID,
		booking.Start,
		booking.End,
		booking.Status,
		1,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.Version = 1
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
	          FROM bookings b LEFT JOIN items i ON i.id = b.item_id
	          WHERE b.id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// DeleteBooking removes the row unconditionally; a missing id is not an error.
func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

// PageBookingsByRenter returns one page of the renter's bookings ordered by
// id descending.
func (db *DB) PageBookingsByRenter(ctx context.Context, renterID int64, page, size int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
	          FROM bookings b LEFT JOIN items i ON i.id = b.item_id
	          WHERE b.renter_id = ?
	          ORDER BY b.id DESC LIMIT ? OFFSET ?`
	return db.queryBookings(ctx, query, renterID, size, page*size)
}

// PageBookingsByOwner returns one page of bookings on the owner's items
// ordered by id ascending.
func (db *DB) PageBookingsByOwner(ctx context.Context, ownerID int64, page, size int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
	          FROM bookings b JOIN items i ON i.id = b.item_id
	          WHERE i.owner_id = ?
	          ORDER BY b.id ASC LIMIT ? OFFSET ?`
	return db.queryBookings(ctx, query, ownerID, size, page*size)
}

// GetBookingsByItem returns every booking of an item, unpaged. Used by the
// comment eligibility check and the item views.
func (db *DB) GetBookingsByItem(ctx context.Context, itemID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
	          FROM bookings b LEFT JOIN items i ON i.id = b.item_id
	          WHERE b.item_id = ?
	          ORDER BY b.id ASC`
	return db.queryBookings(ctx, query, itemID)
}

// ListBookingsBetween returns all bookings overlapping the window. Feeds the
// administrative export.
func (db *DB) ListBookingsBetween(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
	          FROM bookings b LEFT JOIN items i ON i.id = b.item_id
	          WHERE b.start_date < ? AND b.end_date > ?
	          ORDER BY b.start_date ASC, b.id ASC`
	return db.queryBookings(ctx, query, end, start)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
