package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset falls back", "", 10},
		{"valid number", "12", 12},
		{"garbage falls back", "twelve", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_SALT_ROUND", tt.value)
			assert.Equal(t, tt.want, getEnvInt("TEST_SALT_ROUND", 10))
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("REMINDER_DAYS", "3")

	LoadConfig()

	assert.Equal(t, "sqlite", AppConfig.DBDriver)
	assert.Equal(t, 3, AppConfig.ReminderDays)
	assert.Equal(t, "MXN", AppConfig.BankTransferCurrency)
	assert.False(t, AppConfig.IsProduction())
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_TRUSTED_PROXIES", " 10.0.0.1, ,10.0.0.0/8 ")
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.0/8"}, getEnvList("TEST_TRUSTED_PROXIES"))

	t.Setenv("TEST_TRUSTED_PROXIES", "")
	assert.Empty(t, getEnvList("TEST_TRUSTED_PROXIES"))
}
