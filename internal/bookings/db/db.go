package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"

	"campus-hub/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateBooking(booking models.Booking) error {
	_, err := d.Bun.NewInsert().Model(&booking).Exec(context.Background())
	return err
}

func (d *DB) GetBookingByID(id string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (d *DB) ListBookingsByRequester(userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("requested_by = ?", userID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListPendingBookings returns pending requests oldest first, so admins review
// them in arrival order.
func (d *DB) ListPendingBookings() ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("status = ?", models.StatusPending).
		Order("created_at ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// HasApprovedConflict runs the half-open overlap test against approved
// bookings on the venue: existing.start < end AND existing.end > start.
// Strict inequalities on both sides, so back-to-back slots never collide.
// excludeID skips the booking being decided when re-checking at approval time.
func (d *DB) HasApprovedConflict(venueID string, start, end time.Time, excludeID string) (bool, error) {
	return hasApprovedConflict(context.Background(), d.Bun, venueID, start, end, excludeID)
}

func hasApprovedConflict(ctx context.Context, idb bun.IDB, venueID string, start, end time.Time, excludeID string) (bool, error) {
	q := idb.NewSelect().
		Model((*models.Booking)(nil)).
		Where("allocated_venue = ?", venueID).
		Where("status = ?", models.StatusApproved).
		Where("start_time < ?", end).
		Where("end_time > ?", start)
	if excludeID != "" {
		q = q.Where("id != ?", excludeID)
	}
	return q.Exists(ctx)
}

func (d *DB) RejectBooking(id, adminComment string) (*models.Booking, error) {
	booking, err := d.GetBookingByID(id)
	if err != nil {
		return nil, err
	}

	booking.Status = models.StatusRejected
	if adminComment != "" {
		booking.AdminComment = adminComment
	}
	booking.UpdatedAt = time.Now().UTC()

	_, err = d.Bun.NewUpdate().
		Model(booking).
		Column("status", "admin_comment", "updated_at").
		Where("id = ?", booking.ID).
		Exec(context.Background())
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ApproveBooking flips the booking to Approved and mirrors the allocated
// venue into the owning event's confirmed_venue, as one transaction. The
// conflict check runs again inside the transaction so two concurrent
// decisions on the same venue cannot both observe a free slot.
func (d *DB) ApproveBooking(booking models.Booking, venueID, adminComment string) (*models.Booking, error) {
	ctx := context.Background()

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		conflict, err := hasApprovedConflict(ctx, tx, venueID, booking.StartTime, booking.EndTime, booking.ID)
		if err != nil {
			return err
		}
		if conflict {
			return models.ErrVenueConflict
		}

		booking.Status = models.StatusApproved
		booking.AllocatedVenue = venueID
		if adminComment != "" {
			booking.AdminComment = adminComment
		}
		booking.UpdatedAt = time.Now().UTC()

		if _, err := tx.NewUpdate().
			Model(&booking).
			Column("status", "allocated_venue", "admin_comment", "updated_at").
			Where("id = ?", booking.ID).
			Exec(ctx); err != nil {
			return err
		}

		_, err = tx.NewUpdate().
			Model((*models.Event)(nil)).
			Set("confirmed_venue = ?", venueID).
			Set("updated_at = ?", booking.UpdatedAt).
			Where("id = ?", booking.EventID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &booking, nil
}
