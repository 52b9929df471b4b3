package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"CRM_ADDR", "DATABASE_URL", "REDIS_URL", "ASSIGNMENT_ISOLATION_WINDOW", "ADMIN_ROLE_ALIASES", "KAFKA_BROKERS"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 2*time.Second, cfg.Assignment.IsolationWindow)
	assert.Equal(t, 10*time.Minute, cfg.Activity.IdleTimeout)
	assert.Equal(t, DefaultAdminRoleAliases, cfg.Authz.AdminRoleAliases)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.NotEmpty(t, cfg.Session.SigningKey)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CRM_ADDR", ":9090")
	t.Setenv("ASSIGNMENT_ISOLATION_WINDOW", "1500")
	t.Setenv("ACTIVITY_IDLE_TIMEOUT", "30s")
	t.Setenv("ADMIN_ROLE_ALIASES", " root , superuser ,")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("AUDIT_BUFFER_SIZE", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 1500*time.Millisecond, cfg.Assignment.IsolationWindow)
	assert.Equal(t, 30*time.Second, cfg.Activity.IdleTimeout)
	assert.Equal(t, []string{"root", "superuser"}, cfg.Authz.AdminRoleAliases)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 1024, cfg.Audit.BufferSize)
}
