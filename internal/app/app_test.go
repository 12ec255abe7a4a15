package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppConfigValidate(t *testing.T) {
	cfg := AppConfig{
		Host:              "0.0.0.0",
		Port:              8001,
		LogLevel:          "INFO",
		CompatibleVersion: "1.0.0",
	}
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Port = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Port = 70000
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.CompatibleVersion = "1.0"
	assert.Error(t, bad.Validate())
}
