package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 10*time.Second, cfg.PhotoFetchTimeout)
	assert.False(t, cfg.PassAuthPermissive)
	assert.NotEmpty(t, cfg.PassAuthSecret)
}

func TestPermissiveModeRefusedInProduction(t *testing.T) {
	t.Setenv("CAMPUSPASS_ENV", EnvProduction)
	t.Setenv("PASS_AUTH_MODE", "permissive")

	cfg := FromEnv()

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.PassAuthPermissive, "production must never run permissive auth")
}

func TestPermissiveModeRequiresExplicitSwitch(t *testing.T) {
	t.Setenv("CAMPUSPASS_ENV", EnvDevelopment)
	t.Setenv("PASS_AUTH_MODE", "permissive")

	cfg := FromEnv()
	assert.True(t, cfg.PassAuthPermissive)
}

func TestKafkaBrokerParsing(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092 ,")

	cfg := FromEnv()
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
}
