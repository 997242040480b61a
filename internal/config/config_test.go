package config

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("GEOCODER", "table")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 21.0285, cfg.Shipping.StoreLatitude)
	assert.Equal(t, 105.8542, cfg.Shipping.StoreLongitude)
	assert.Equal(t, int64(20000), cfg.Shipping.FallbackFee)
	assert.Equal(t, 1.0, cfg.Geocoding.RequestsPerSecond)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEOCODER", "osm")
	t.Setenv("NOMINATIM_RPS", "0.5")
	t.Setenv("SESSION_IDLE_TTL", "45m")
	t.Setenv("SHIPPING_FALLBACK_FEE", "25000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.vn,https://b.vn")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "osm", cfg.Geocoding.Strategy)
	assert.Equal(t, 0.5, cfg.Geocoding.RequestsPerSecond)
	assert.Equal(t, 45*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, int64(25000), cfg.Shipping.FallbackFee)
	assert.Equal(t, []string{"https://a.vn", "https://b.vn"}, cfg.Security.CORSAllowedOrigins)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("GEOCODER", "google")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("GEOCODER", "table")
	t.Setenv("JWT_SECRET", "too-short")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadEmail(t *testing.T) {
	t.Setenv("GEOCODER", "table")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "none", cfg.Email.Provider)
	assert.Equal(t, 587, cfg.Email.SMTPPort)

	t.Setenv("EMAIL_PROVIDER", "sendgrid")
	t.Setenv("EMAIL_TIMEOUT", "5s")
	cfg, err = Load()
	assert.NoError(t, err)
	assert.Equal(t, "sendgrid", cfg.Email.Provider)
	assert.Equal(t, 5*time.Second, cfg.Email.Timeout)

	t.Setenv("EMAIL_PROVIDER", "carrier-pigeon")
	_, err = Load()
	assert.Error(t, err)
}
