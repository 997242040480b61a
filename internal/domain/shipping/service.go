// internal/domain/shipping/service.go
package shipping

import (
	"context"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/address"
	"github.com/your-org/storefront-bff/internal/domain/geo"
	"github.com/your-org/storefront-bff/internal/pkg/metrics"
)

// DefaultFallbackFee is charged when a quote cannot be computed
const DefaultFallbackFee int64 = 20000

// Quote is a derived shipping price for one address
type Quote struct {
	Address      string  `json:"address"`
	DistanceKm   float64 `json:"distance_km"`
	FeeVND       int64   `json:"fee_vnd"`
	Tier         string  `json:"tier"`
	FreeShipping bool    `json:"free_shipping"`
	Fallback     bool    `json:"fallback"`
}

// tier is a distance band with an inclusive upper bound
type tier struct {
	maxKm float64
	fee   int64
	name  string
}

var tiers = []tier{
	{maxKm: 5, fee: 20000, name: "0-5km"},
	{maxKm: 10, fee: 30000, name: "5-10km"},
	{maxKm: 20, fee: 40000, name: "10-20km"},
	{maxKm: 50, fee: 50000, name: "20-50km"},
	{maxKm: 100, fee: 60000, name: "50-100km"},
}

const (
	longHaulBaseFee  int64   = 60000
	longHaulStepFee  int64   = 10000
	longHaulStepKm   float64 = 50
	longHaulStartKm  float64 = 100
	tierFreeShipping         = "free"
	tierFallback             = "fallback"
	tierLongHaul             = ">100km"
)

// Resolver turns an address into a coordinate
type Resolver interface {
	Resolve(ctx context.Context, raw string) geo.Coordinate
}

// Service computes shipping quotes
type Service struct {
	resolver    Resolver
	calculator  *geo.Calculator
	fallbackFee int64
	logger      logrus.FieldLogger
}

// NewService creates a new shipping service
func NewService(resolver Resolver, calculator *geo.Calculator, fallbackFee int64, logger logrus.FieldLogger) *Service {
	if fallbackFee <= 0 {
		fallbackFee = DefaultFallbackFee
	}
	return &Service{
		resolver:    resolver,
		calculator:  calculator,
		fallbackFee: fallbackFee,
		logger:      logger,
	}
}

// Quote prices delivery to raw. It never fails: if anything goes wrong the
// fallback fee is returned with a zero distance so checkout can proceed.
func (s *Service) Quote(ctx context.Context, raw string) (quote Quote) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Error("Shipping quote failed, using fallback fee")
			quote = s.fallback(raw)
		}
		metrics.RecordShippingQuote(quote.Tier)
	}()

	distance := s.calculator.DistanceKm(s.resolver.Resolve(ctx, raw))
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0 {
		s.logger.WithField("address", raw).Warn("Unusable distance, using fallback fee")
		return s.fallback(raw)
	}

	if IsFreeShippingAddress(raw) {
		return Quote{
			Address:      raw,
			DistanceKm:   distance,
			FeeVND:       0,
			Tier:         tierFreeShipping,
			FreeShipping: true,
		}
	}

	fee, name := FeeForDistance(distance)
	return Quote{
		Address:    raw,
		DistanceKm: distance,
		FeeVND:     fee,
		Tier:       name,
	}
}

// fallback prices raw without a distance. Capital addresses stay free.
func (s *Service) fallback(raw string) Quote {
	if IsFreeShippingAddress(raw) {
		return Quote{
			Address:      raw,
			Tier:         tierFreeShipping,
			FreeShipping: true,
			Fallback:     true,
		}
	}
	return Quote{
		Address:  raw,
		FeeVND:   s.fallbackFee,
		Tier:     tierFallback,
		Fallback: true,
	}
}

// IsFreeShippingAddress reports whether raw is inside the capital
func IsFreeShippingAddress(raw string) bool {
	normalized := address.Normalize(raw)
	return strings.Contains(normalized, "hà nội") || strings.Contains(normalized, "hanoi")
}

// FeeForDistance applies the distance bands and returns the fee and band name
func FeeForDistance(distanceKm float64) (int64, string) {
	for _, t := range tiers {
		if distanceKm <= t.maxKm {
			return t.fee, t.name
		}
	}
	steps := math.Ceil((distanceKm - longHaulStartKm) / longHaulStepKm)
	return longHaulBaseFee + longHaulStepFee*int64(steps), tierLongHaul
}
