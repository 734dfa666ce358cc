package container

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOrCompute(t *testing.T) {
	c := newCache()

	v, hit, err := c.getOrCompute("k", func() (any, error) { return 1, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, v)

	v, hit, err = c.getOrCompute("k", func() (any, error) { return 2, nil })
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, v)
}

func TestCache_ComputeErrorNotStored(t *testing.T) {
	c := newCache()
	boom := errors.New("boom")

	_, _, err := c.getOrCompute("k", func() (any, error) { return nil, boom })

	assert.ErrorIs(t, err, boom)
	_, ok := c.get("k")
	assert.False(t, ok)
}

func TestCache_RacingComputeKeepsFirstStored(t *testing.T) {
	c := newCache()
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(2)

	results := make([]any, 2)
	var done sync.WaitGroup
	for i := 0; i < 2; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			results[i], _, _ = c.getOrCompute("k", func() (any, error) {
				started.Done()
				<-release
				return &struct{ n int }{i}, nil
			})
		}(i)
	}
	started.Wait()
	close(release)
	done.Wait()

	stored, ok := c.get("k")
	require.True(t, ok)
	assert.Same(t, stored, results[0])
	assert.Same(t, stored, results[1])
}

func TestCache_DeleteClearKeys(t *testing.T) {
	c := newCache()
	for _, k := range []string{"b", "a", "c"} {
		_, _, _ = c.getOrCompute(k, func() (any, error) { return k, nil })
	}
	assert.Equal(t, []string{"a", "b", "c"}, c.keys())

	c.delete("b")
	assert.Equal(t, []string{"a", "c"}, c.keys())

	c.clear()
	assert.Empty(t, c.keys())
}
