// internal/domain/geo/nominatim.go
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/domain/address"
	"github.com/your-org/storefront-bff/internal/pkg/metrics"
	"golang.org/x/time/rate"
)

// CachedResult is a remembered Nominatim answer. Empty answers are cached
// too so repeated misses do not spend the rate budget.
type CachedResult struct {
	Found      bool       `json:"found"`
	Coordinate Coordinate `json:"coordinate"`
}

// ResultCache stores Nominatim answers per sanitized query
type ResultCache interface {
	Get(ctx context.Context, query string) (CachedResult, bool)
	Set(ctx context.Context, query string, result CachedResult)
}

// searchResult is one element of a Nominatim /search response
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NominatimStrategy geocodes through a Nominatim-compatible search API
type NominatimStrategy struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      ResultCache
	logger     logrus.FieldLogger
}

// NominatimOption customizes a NominatimStrategy
type NominatimOption func(*NominatimStrategy)

// WithResultCache enables caching of answers
func WithResultCache(cache ResultCache) NominatimOption {
	return func(s *NominatimStrategy) {
		s.cache = cache
	}
}

// NewNominatimStrategy creates an OSM-backed strategy from configuration
func NewNominatimStrategy(cfg config.GeocodingConfig, logger logrus.FieldLogger, opts ...NominatimOption) *NominatimStrategy {
	s := &NominatimStrategy{
		baseURL:    strings.TrimRight(cfg.NominatimURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Strategy
func (s *NominatimStrategy) Name() string { return "osm" }

// TryResolve implements Strategy
func (s *NominatimStrategy) TryResolve(ctx context.Context, c address.Components) (Coordinate, bool) {
	return s.Geocode(ctx, c)
}

// Geocode tries the OSM queries for c one at a time and returns the first
// hit. It reports false when every query came back empty or failed.
func (s *NominatimStrategy) Geocode(ctx context.Context, c address.Components) (Coordinate, bool) {
	for _, query := range OSMQueries(c) {
		if ctx.Err() != nil {
			return Coordinate{}, false
		}

		coord, found, err := s.search(ctx, query)
		if err != nil {
			s.logger.WithError(err).WithField("query", query).Warn("Nominatim query failed")
			continue
		}
		if found {
			return coord, true
		}
	}

	s.logger.WithField("address", c.Original).Debug("Nominatim found no match")
	return Coordinate{}, false
}

// OSMQueries returns the sanitized queries for c in lookup order:
// district+province, district, ward+district, ward, province, raw address.
func OSMQueries(c address.Components) []string {
	candidates := []string{
		address.Join(c.District, c.Province),
		c.District,
		address.Join(c.Ward, c.District),
		c.Ward,
		c.Province,
		c.Original,
	}

	queries := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if q := SanitizeQuery(candidate); q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}

// SanitizeQuery strips everything but letters, digits and spaces and joins
// the remaining words with "+".
func SanitizeQuery(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(cleaned), "+")
}

func (s *NominatimStrategy) search(ctx context.Context, query string) (Coordinate, bool, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, query); ok {
			metrics.RecordNominatimRequest("cached")
			return cached.Coordinate, cached.Found, nil
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return Coordinate{}, false, err
	}

	coord, found, err := s.fetch(ctx, query)
	switch {
	case err != nil:
		metrics.RecordNominatimRequest("error")
		return Coordinate{}, false, err
	case found:
		metrics.RecordNominatimRequest("hit")
	default:
		metrics.RecordNominatimRequest("empty")
	}

	if s.cache != nil {
		s.cache.Set(ctx, query, CachedResult{Found: found, Coordinate: coord})
	}
	return coord, found, nil
}

func (s *NominatimStrategy) fetch(ctx context.Context, query string) (Coordinate, bool, error) {
	words := strings.Split(query, "+")
	for i, w := range words {
		words[i] = url.QueryEscape(w)
	}
	endpoint := fmt.Sprintf("%s/search?format=json&q=%s&countrycodes=vn&limit=1", s.baseURL, strings.Join(words, "+"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Coordinate{}, false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "vi")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Coordinate{}, false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	s.logger.WithFields(logrus.Fields{
		"query":   query,
		"status":  resp.StatusCode,
		"latency": time.Since(start),
	}).Debug("Nominatim request completed")

	if resp.StatusCode != http.StatusOK {
		return Coordinate{}, false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Coordinate{}, false, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(results) == 0 {
		return Coordinate{}, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coordinate{}, false, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coordinate{}, false, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}

	return Coordinate{Latitude: lat, Longitude: lon}, true, nil
}
