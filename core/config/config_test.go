package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/core/config"
	"github.com/dmitrymomot/waypoint/core/viewport"
)

type navConfig struct {
	Swap  viewport.SwapStrategy `env:"TEST_CFG_SWAP" envDefault:"sequential-remove-first"`
	Defer viewport.DeferPolicy  `env:"TEST_CFG_DEFER" envDefault:"load-hooks"`
	Base  string                `env:"TEST_CFG_BASE"`
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_CFG_SWAP", "parallel-remove-first")
	t.Setenv("TEST_CFG_BASE", "/app")

	var cfg navConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, viewport.ParallelRemoveFirst, cfg.Swap)
	assert.Equal(t, viewport.DeferLoadHooks, cfg.Defer)
	assert.Equal(t, "/app", cfg.Base)

	// cached per type
	t.Setenv("TEST_CFG_BASE", "/changed")
	var again navConfig
	config.MustLoad(&again)
	assert.Equal(t, cfg, again)
}

type brokenConfig struct {
	Defer viewport.DeferPolicy `env:"TEST_CFG_BROKEN_DEFER"`
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("TEST_CFG_BROKEN_DEFER", "whenever")

	var cfg brokenConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
	assert.Panics(t, func() { config.MustLoad(&cfg) })
}

type requiredConfig struct {
	URL string `env:"TEST_CFG_REQUIRED_URL,required"`
}

func TestLoad_Required(t *testing.T) {
	var cfg requiredConfig
	assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
}
