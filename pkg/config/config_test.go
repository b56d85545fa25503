package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("PET_INT", "42")
	t.Setenv("PET_BAD_INT", "x")
	t.Setenv("PET_DUR", "90s")
	t.Setenv("PET_BAD_DUR", "-5s")

	assert.Equal(t, 42, EnvIntDefault("PET_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("PET_BAD_INT", 1))
	assert.Equal(t, 7, EnvIntDefault("PET_MISSING_INT", 7))
	assert.Equal(t, 90*time.Second, EnvDurationDefault("PET_DUR", time.Minute))
	assert.Equal(t, time.Minute, EnvDurationDefault("PET_BAD_DUR", time.Minute))
	assert.Equal(t, "fallback", EnvDefault("PET_MISSING", "fallback"))
}

func TestLoad(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, []byte("s3cret"), cfg.JWTAccessSecret)
	assert.Equal(t, "orders", cfg.ESOrderIndex)
}

func TestMissingKeys(t *testing.T) {
	got := MissingKeys(map[string]string{
		"JWT_SECRET":   " ",
		"DATABASE_URL": "",
		"KAFKA_TOPIC":  "order_events",
	})
	assert.Equal(t, []string{"DATABASE_URL", "JWT_SECRET"}, got)
	assert.Empty(t, MissingKeys(map[string]string{"A": "1"}))
}
