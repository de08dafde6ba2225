package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/resource"
)

func catalogWithTools(n int) *Catalog {
	ct := resource.Content{Source: "test"}
	for i := range n {
		ct.Tools = append(ct.Tools, resource.Tool{ID: string(rune('a' + i)), Slug: string(rune('a' + i))})
	}
	return New(ct)
}

func TestLive_Reload(t *testing.T) {
	var calls atomic.Int32
	load := func(context.Context) (*Catalog, error) {
		n := int(calls.Add(1))
		return catalogWithTools(n), nil
	}

	l, err := NewLive(context.Background(), nil, load)
	require.NoError(t, err)
	assert.Len(t, l.Current().Tools(), 1)

	var notified *Catalog
	l.OnReload(func(c *Catalog) { notified = c })

	require.NoError(t, l.Reload(context.Background()))
	assert.Len(t, l.Current().Tools(), 2)
	assert.Same(t, l.Current(), notified)
}

func TestLive_ReloadFailureKeepsPrevious(t *testing.T) {
	fail := false
	load := func(context.Context) (*Catalog, error) {
		if fail {
			return nil, errors.New("disk on fire")
		}
		return catalogWithTools(3), nil
	}

	l, err := NewLive(context.Background(), nil, load)
	require.NoError(t, err)
	before := l.Current()

	fail = true
	assert.Error(t, l.Reload(context.Background()))
	assert.Same(t, before, l.Current())
}

func TestNewLive_InitialFailure(t *testing.T) {
	_, err := NewLive(context.Background(), nil, func(context.Context) (*Catalog, error) {
		return nil, errors.New("nope")
	})
	assert.Error(t, err)
}

func TestLive_ConcurrentReaders(t *testing.T) {
	var n atomic.Int32
	l, err := NewLive(context.Background(), nil, func(context.Context) (*Catalog, error) {
		return catalogWithTools(int(n.Add(1)%5) + 1), nil
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				c := l.Current()
				// A catalog is internally consistent: listing and stats agree.
				assert.Equal(t, len(c.Tools()), c.Stats().TotalResources)
			}
		}()
	}
	for range 20 {
		require.NoError(t, l.Reload(context.Background()))
	}
	wg.Wait()
}
