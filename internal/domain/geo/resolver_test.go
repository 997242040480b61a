package geo

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/address"
)

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type stubStrategy struct {
	name  string
	coord Coordinate
	ok    bool
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) TryResolve(context.Context, address.Components) (Coordinate, bool) {
	s.calls++
	return s.coord, s.ok
}

func TestSearchTermsHanoiPrefersWard(t *testing.T) {
	c := address.Parse("123 Đường ABC, Phường Phúc Đồng, Quận Long Biên, Hà Nội")
	assert.Equal(t, []string{
		"Phúc Đồng, Long Biên",
		"Phúc Đồng",
		"Long Biên, Hà Nội",
		"Long Biên",
		"Hà Nội",
		"123 đường abc, phường phúc đồng, quận long biên, hà nội",
	}, SearchTerms(c))
}

func TestSearchTermsElsewherePrefersProvince(t *testing.T) {
	c := address.Parse("12 Nguyễn Hữu Thọ, Phường Tân Hưng, Quận 7, Thành phố Hồ Chí Minh")
	assert.Equal(t, []string{
		"Hồ Chí Minh",
		"Quận 7, Hồ Chí Minh",
		"Quận 7",
		"Tân Hưng, Quận 7",
		"Tân Hưng",
		"12 nguyễn hữu thọ, phường tân hưng, quận 7, thành phố hồ chí minh",
	}, SearchTerms(c))
}

func TestSearchTermsSkipsUnknownParts(t *testing.T) {
	assert.Equal(t, []string{"ho chi minh", "456 nguyen trai, quan 5, tp. ho chi minh"},
		SearchTerms(address.Components{Province: "ho chi minh", Normalized: "456 nguyen trai, quan 5, tp. ho chi minh"}))
	assert.Equal(t, []string{}, SearchTerms(address.Components{}))
}

func TestResolverNeverFails(t *testing.T) {
	resolver := NewResolver(testLogger(), NewTableStrategy(DefaultTable()))

	for _, input := range []string{"", "   ", ",,,", "???", "Somewhere, Atlantis"} {
		res := resolver.ResolveDetailed(context.Background(), input)
		assert.Equal(t, HanoiCenter, res.Coordinate, "input %q", input)
		assert.Equal(t, "default", res.Strategy, "input %q", input)
	}
}

func TestResolverHanoiDistrict(t *testing.T) {
	resolver := NewResolver(testLogger(), NewTableStrategy(DefaultTable()))

	res := resolver.ResolveDetailed(context.Background(), "123 Đường ABC, Phường Phúc Đồng, Quận Long Biên, Hà Nội")
	assert.Equal(t, "table", res.Strategy)
	assert.Equal(t, Coordinate{21.0549, 105.8885}, res.Coordinate)
	assert.Equal(t, "Long Biên", res.Components.District)
}

func TestResolverProvinceFirstOutsideHanoi(t *testing.T) {
	resolver := NewResolver(testLogger(), NewTableStrategy(DefaultTable()))

	// "Sơn Tây" is a Hanoi district but the province is looked up first
	c := resolver.Resolve(context.Background(), "Phường Quang Trung, Thị xã Sơn Tây, Tỉnh Bắc Ninh")
	assert.Equal(t, Coordinate{21.1861, 106.0763}, c)
}

func TestResolverUnaccentedProvinceFallsBackToDefault(t *testing.T) {
	resolver := NewResolver(testLogger(), NewTableStrategy(DefaultTable()))

	res := resolver.ResolveDetailed(context.Background(), "456 Nguyen Trai, Quan 5, TP. Ho Chi Minh")
	assert.Equal(t, "default", res.Strategy)
	assert.Equal(t, HanoiCenter, res.Coordinate)
}

func TestResolverOperatorTableEntry(t *testing.T) {
	table := NewTable(append(BuiltinLocations(), Location{Name: "Ho Chi Minh", Coordinate: Coordinate{10.8231, 106.6297}}))
	resolver := NewResolver(testLogger(), NewTableStrategy(table))

	res := resolver.ResolveDetailed(context.Background(), "456 Nguyen Trai, Quan 5, TP. Ho Chi Minh")
	assert.Equal(t, "table", res.Strategy)
	assert.Equal(t, Coordinate{10.8231, 106.6297}, res.Coordinate)
}

func TestResolverFirstSuccessWins(t *testing.T) {
	invalid := &stubStrategy{name: "invalid", coord: Coordinate{Latitude: math.NaN()}, ok: true}
	miss := &stubStrategy{name: "miss"}
	hit := &stubStrategy{name: "hit", coord: Coordinate{16.0544, 108.2022}, ok: true}
	never := &stubStrategy{name: "never", coord: Coordinate{1, 1}, ok: true}

	resolver := NewResolver(testLogger(), invalid, miss, hit, never)
	res := resolver.ResolveDetailed(context.Background(), "Đà Nẵng")

	assert.Equal(t, "hit", res.Strategy)
	assert.Equal(t, Coordinate{16.0544, 108.2022}, res.Coordinate)
	assert.Equal(t, 1, invalid.calls)
	assert.Equal(t, 1, miss.calls)
	assert.Equal(t, 0, never.calls)
}
