package geo

import (
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestDistanceKm(t *testing.T) {
	calc := NewCalculator(HanoiCenter)

	tests := []struct {
		name   string
		target Coordinate
		minKm  float64
		maxKm  float64
	}{
		{"Store", HanoiCenter, 0, 0},
		{"LongBien", Coordinate{21.0549, 105.8885}, 4.5, 4.7},
		{"BacNinh", Coordinate{21.1861, 106.0763}, 28.8, 29.1},
		{"HoChiMinh", Coordinate{10.8231, 106.6297}, 1137, 1139},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := calc.DistanceKm(test.target)
			assert.True(t, d >= test.minKm && d <= test.maxKm, "distance %.3f not in [%v, %v]", d, test.minKm, test.maxKm)
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := Coordinate{21.0285, 105.8542}
	b := Coordinate{16.0544, 108.2022}
	assert.Equal(t, math.Round(DistanceMeters(a, b)), math.Round(DistanceMeters(b, a)))
}

func TestCoordinateValid(t *testing.T) {
	assert.True(t, HanoiCenter.Valid())
	assert.True(t, Coordinate{}.Valid())
	assert.False(t, Coordinate{Latitude: math.NaN(), Longitude: 105}.Valid())
	assert.False(t, Coordinate{Latitude: 91, Longitude: 105}.Valid())
	assert.False(t, Coordinate{Latitude: 21, Longitude: -181}.Valid())
}

func TestTableLookup(t *testing.T) {
	table := DefaultTable()
	assert.True(t, table.Len() >= 80, "built-in table has %d entries", table.Len())

	c, ok := table.Lookup("  LONG BIÊN ")
	assert.True(t, ok)
	assert.Equal(t, Coordinate{21.0549, 105.8885}, c)

	_, ok = table.Lookup("Ho Chi Minh")
	assert.False(t, ok)

	_, ok = table.Lookup("")
	assert.False(t, ok)
}

func TestNewTableLaterEntriesWin(t *testing.T) {
	table := NewTable([]Location{
		{Name: "Ho Chi Minh", Coordinate: Coordinate{10, 106}},
		{Name: "ho chi minh", Coordinate: Coordinate{10.8231, 106.6297}},
		{Name: " ", Coordinate: Coordinate{1, 1}},
	})

	assert.Equal(t, 1, table.Len())
	c, ok := table.Lookup("HO CHI MINH")
	assert.True(t, ok)
	assert.Equal(t, Coordinate{10.8231, 106.6297}, c)
	assert.Equal(t, []Location{{Name: "ho chi minh", Coordinate: Coordinate{10.8231, 106.6297}}}, table.Locations())
}
