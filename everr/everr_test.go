package everr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"trpc.group/trpc-go/evcore/everr"
)

func TestWrapPreservesIs(t *testing.T) {
	err := everr.Wrap(everr.ConfigError, "bad directive")
	assert.True(t, everr.Is(err, everr.ConfigError))
	assert.False(t, everr.Is(err, everr.PlatformError))
	assert.Contains(t, err.Error(), "bad directive")
}

func TestWrapfFormatsMessage(t *testing.T) {
	err := everr.Wrapf(everr.ResourceExhaustion, "pool %q at %d", "io", 65536)
	assert.True(t, everr.Is(err, everr.ResourceExhaustion))
	assert.Contains(t, err.Error(), `pool "io" at 65536`)
}

func TestKindsAreDistinct(t *testing.T) {
	err := everr.Wrap(everr.Backend, "unsupported")
	assert.True(t, everr.Is(err, everr.Backend))
	assert.False(t, everr.Is(err, everr.Stale))
	assert.False(t, everr.Is(err, everr.ConfigError))
}
