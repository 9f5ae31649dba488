// Command bootstrap resets a development database: drops the schema, applies
// migrations, and seeds an admin account plus a handful of venues.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"golang.org/x/crypto/bcrypt"

	"campus-hub/internal/config"
	"campus-hub/internal/database/migrations"
	"campus-hub/internal/models"
	"campus-hub/internal/utils"
)

func main() {
	_ = godotenv.Load()

	seed := flag.Bool("seed", true, "seed an admin user and sample venues")
	drop := flag.Bool("drop", false, "drop all tables before migrating")
	flag.Parse()

	cfg := config.Load()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("[Database] Failed to open Postgres: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("[Database] Failed to connect to Postgres: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	ctx := context.Background()

	if *drop {
		if err := dropTables(ctx, bunDB); err != nil {
			log.Fatalf("[Database] Drop failed: %v", err)
		}
		log.Println("[Database] Dropped existing tables")
	}

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.Up(); err != nil {
		log.Fatalf("[Migrations] %v", err)
	}

	if *seed {
		if err := seedData(ctx, bunDB); err != nil {
			log.Fatalf("[Database] Seed failed: %v", err)
		}
		log.Println("[Database] Seed data inserted")
	}
}

func dropTables(ctx context.Context, db *bun.DB) error {
	for _, model := range []interface{}{
		(*models.Booking)(nil),
		(*models.Event)(nil),
		(*models.Venue)(nil),
		(*models.User)(nil),
	} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return err
		}
	}
	// Clear migrate's bookkeeping so Up() reapplies from scratch.
	_, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS schema_migrations")
	return err
}

func seedData(ctx context.Context, db *bun.DB) error {
	now := time.Now().UTC()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		ID:           utils.NewID(),
		Name:         "Campus Admin",
		Email:        "admin@campus-hub.local",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := db.NewInsert().Model(&admin).On("CONFLICT (email) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	venues := []models.Venue{
		{
			ID:        utils.NewID(),
			Name:      "Main Auditorium",
			Type:      models.VenueAuditorium,
			Capacity:  500,
			Location:  "Block A, Ground Floor",
			Equipment: []string{"projector", "mic", "AC"},
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        utils.NewID(),
			Name:      "Seminar Hall 1",
			Type:      models.VenueHall,
			Capacity:  120,
			Location:  "Block B, 2nd Floor",
			Equipment: []string{"projector", "whiteboard"},
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        utils.NewID(),
			Name:      "CS Lab 3",
			Type:      models.VenueLab,
			Capacity:  60,
			Location:  "Block C, 1st Floor",
			Equipment: []string{"workstations", "AC"},
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	_, err = db.NewInsert().Model(&venues).On("CONFLICT (name) DO NOTHING").Exec(ctx)
	return err
}
