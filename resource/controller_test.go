package resource

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.ReserveMemory(50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.NoError(t, c.ReserveMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	err := c.ReserveMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.ReserveMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.ReserveMemory(1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	require.NoError(t, c.ReserveMemory(10))
	c.ReleaseMemory(10)
	assert.Equal(t, int64(0), c.MemoryUsage())
	require.NoError(t, c.AcquireAssembly(context.Background()))
	assert.True(t, c.TryAcquireAssembly())
	c.ReleaseAssembly()
	require.NoError(t, c.AcquireIO(context.Background(), 1<<20))
}

func TestController_Assemblies(t *testing.T) {
	c := NewController(Config{MaxConcurrentAssemblies: 2})
	assert.Equal(t, int64(2), c.Config().MaxConcurrentAssemblies)

	require.NoError(t, c.AcquireAssembly(t.Context()))
	require.NoError(t, c.AcquireAssembly(t.Context()))
	assert.False(t, c.TryAcquireAssembly())

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireAssembly(ctx))

	c.ReleaseAssembly()
	assert.True(t, c.TryAcquireAssembly())
}

func TestController_DefaultAssemblies(t *testing.T) {
	c := NewController(Config{})
	assert.Equal(t, int64(1), c.Config().MaxConcurrentAssemblies)
}

func TestRateLimitedIO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	var buf bytes.Buffer
	w := NewRateLimitedWriter(t.Context(), &buf, c)
	payload := bytes.Repeat([]byte{7}, 4096)
	n, err := w.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	r := NewRateLimitedReader(t.Context(), &buf, c)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRateLimitedIO_Canceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	w := NewRateLimitedWriter(ctx, io.Discard, c)
	_, err := w.Write([]byte{1, 2, 3})
	assert.Error(t, err)
}
