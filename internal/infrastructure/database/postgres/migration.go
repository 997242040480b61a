// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/geo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger logrus.FieldLogger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	models := []interface{}{
		&geo.KnownLocation{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_known_locations_lower_name ON known_locations(LOWER(name))",
		"CREATE INDEX IF NOT EXISTS idx_known_locations_source ON known_locations(source)",
	}

	failCount := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("Failed to create index")
			failCount++
		}
	}

	m.logger.Infof("Created %d indexes (%d failed)", len(indexes)-failCount, failCount)
	return nil
}

// SeedKnownLocations inserts the built-in lookup table. Existing rows win,
// so operator edits survive restarts.
func (m *Migration) SeedKnownLocations() error {
	builtin := geo.BuiltinLocations()
	rows := make([]geo.KnownLocation, 0, len(builtin))
	for _, loc := range builtin {
		rows = append(rows, geo.KnownLocation{
			Name:      loc.Name,
			Latitude:  loc.Coordinate.Latitude,
			Longitude: loc.Coordinate.Longitude,
			Source:    "builtin",
		})
	}

	result := m.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).CreateInBatches(&rows, 100)
	if result.Error != nil {
		return fmt.Errorf("failed to seed known locations: %w", result.Error)
	}

	m.logger.WithField("inserted", result.RowsAffected).Info("Known locations seeded")
	return nil
}

// LoadLocations reads the lookup table for the coordinate resolver
func (m *Migration) LoadLocations(ctx context.Context) ([]geo.Location, error) {
	var rows []geo.KnownLocation
	if err := m.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load known locations: %w", err)
	}

	locations := make([]geo.Location, 0, len(rows))
	for _, row := range rows {
		loc := row.Location()
		if !loc.Coordinate.Valid() {
			m.logger.WithField("name", row.Name).Warn("Skipping known location with invalid coordinate")
			continue
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

// GetTableInfo logs the row count of every table
func (m *Migration) GetTableInfo() {
	for _, table := range []string{"known_locations"} {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			m.logger.WithError(err).WithField("table", table).Warn("Failed to count rows")
			continue
		}
		m.logger.WithFields(logrus.Fields{"table": table, "rows": count}).Info("Table info")
	}
}
