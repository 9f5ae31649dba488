package db

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"campus-hub/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) ListEvents(eventType models.EventType) ([]models.Event, error) {
	var events []models.Event
	q := d.Bun.NewSelect().
		Model(&events).
		Order("start_time ASC")
	if eventType != "" {
		q = q.Where("type = ?", eventType)
	}
	if err := q.Scan(context.Background()); err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) ListEventsByCreator(creatorID string) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("created_by = ?", creatorID).
		Order("start_time ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) GetEventByID(id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventForOwner resolves an event by id and creator in one lookup, so a
// foreign event and a missing event are indistinguishable to the caller.
func (d *DB) GetEventForOwner(id, creatorID string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Where("created_by = ?", creatorID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) CreateEvent(event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(context.Background())
	return err
}

func (d *DB) UpdateEvent(event models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(&event).
		Column("title", "description", "type", "start_time", "end_time", "updated_at").
		Where("id = ?", event.ID).
		Exec(context.Background())
	return err
}

func (d *DB) HasApprovedBooking(eventID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		Where("event_id = ?", eventID).
		Where("status = ?", models.StatusApproved).
		Exists(context.Background())
}

// DeleteEventCascade removes the event and every booking referencing it as
// one transaction. The approved-booking guard is re-checked inside the
// transaction: a concurrent approval must not leave a dangling approved
// booking, and a failed delete must leave everything in place.
func (d *DB) DeleteEventCascade(eventID string) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		approved, err := tx.NewSelect().
			Model((*models.Booking)(nil)).
			Where("event_id = ?", eventID).
			Where("status = ?", models.StatusApproved).
			Exists(ctx)
		if err != nil {
			return err
		}
		if approved {
			return models.ErrHasApprovedBooking
		}

		if _, err := tx.NewDelete().
			Model((*models.Booking)(nil)).
			Where("event_id = ?", eventID).
			Exec(ctx); err != nil {
			return err
		}

		_, err = tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("id = ?", eventID).
			Exec(ctx)
		return err
	})
}

func (d *DB) GetEventsByIDs(ids []string) ([]models.Event, error) {
	var events []models.Event
	if len(ids) == 0 {
		return events, nil
	}
	err := d.Bun.NewSelect().
		Model(&events).
		Where("id IN (?)", bun.In(ids)).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}
