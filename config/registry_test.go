package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/evcore/config"
)

func TestNewRegistryPrePopulatesDefault(t *testing.T) {
	r := config.NewRegistry()
	d := r.Default()
	assert.Equal(t, "default", d.Name)
	assert.Equal(t, 32, d.Threads)
	assert.Equal(t, 65536, d.MaxQueue)
}

func TestRegistryDeclareAndLookup(t *testing.T) {
	r := config.NewRegistry()
	r.Declare(config.Directive{Name: "io", Threads: 8, MaxQueue: 512})

	d, err := r.Lookup("io")
	require.NoError(t, err)
	assert.Equal(t, 8, d.Threads)
	assert.Equal(t, 512, d.MaxQueue)
}

func TestRegistryLookupUnknownFails(t *testing.T) {
	r := config.NewRegistry()
	_, err := r.Lookup("never-declared")
	assert.Error(t, err)
}

func TestRegistryDeclareOverridesDefault(t *testing.T) {
	r := config.NewRegistry()
	r.Declare(config.Directive{Name: "default", Threads: 64, MaxQueue: 131072})

	d := r.Default()
	assert.Equal(t, 64, d.Threads)
	assert.Equal(t, 131072, d.MaxQueue)
}

func TestPackageLevelRegistryRoundTrip(t *testing.T) {
	config.Declare(config.Directive{Name: "pkg-level-test-pool", Threads: 4, MaxQueue: 100})
	d, err := config.Lookup("pkg-level-test-pool")
	require.NoError(t, err)
	assert.Equal(t, 4, d.Threads)

	def := config.Default()
	assert.Equal(t, "default", def.Name)
}
