package db

import (
	"context"

	"github.com/uptrace/bun"

	"campus-hub/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) ListActiveVenues() ([]models.Venue, error) {
	var venues []models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		Where("is_active = ?", true).
		Order("name ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return venues, nil
}

func (d *DB) GetVenueByID(id string) (*models.Venue, error) {
	var venue models.Venue
	err := d.Bun.NewSelect().
		Model(&venue).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

// NameExists checks active and inactive venues alike: a deactivated venue
// still reserves its name.
func (d *DB) NameExists(name string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Venue)(nil)).
		Where("name = ?", name).
		Exists(context.Background())
}

func (d *DB) CreateVenue(venue models.Venue) error {
	_, err := d.Bun.NewInsert().Model(&venue).Exec(context.Background())
	return err
}

func (d *DB) DeactivateVenue(id string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Venue)(nil)).
		Set("is_active = ?", false).
		Where("id = ?", id).
		Exec(context.Background())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) GetVenuesByIDs(ids []string) ([]models.Venue, error) {
	var venues []models.Venue
	if len(ids) == 0 {
		return venues, nil
	}
	err := d.Bun.NewSelect().
		Model(&venues).
		Where("id IN (?)", bun.In(ids)).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return venues, nil
}
