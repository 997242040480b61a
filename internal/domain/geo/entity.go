// internal/domain/geo/entity.go
package geo

import (
	"time"

	"gorm.io/gorm"
)

// KnownLocation is a lookup table row stored in Postgres. The built-in table
// is seeded into it on first start; operators may add rows (for example
// spellings without diacritics) and they are picked up on the next start.
type KnownLocation struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Latitude  float64        `gorm:"not null" json:"latitude"`
	Longitude float64        `gorm:"not null" json:"longitude"`
	Source    string         `gorm:"size:20;not null;default:builtin" json:"source"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (KnownLocation) TableName() string {
	return "known_locations"
}

// Location converts the row to a lookup entry
func (k KnownLocation) Location() Location {
	return Location{
		Name:       k.Name,
		Coordinate: Coordinate{Latitude: k.Latitude, Longitude: k.Longitude},
	}
}
