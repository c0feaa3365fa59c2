package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestMemory(t *testing.T) *Memory {
	m, err := NewMemory(Config{
		NumCounters: 1000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	assert.NoError(t, err)
	return m
}

type laneView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestMemory_SetGet(t *testing.T) {
	m := newTestMemory(t)
	defer m.Close()

	in := []laneView{{ID: "lane-1", Name: "Lane 1"}}
	assert.NoError(t, m.Set(context.Background(), "lanes:snapshot:store-1", in, time.Minute))

	var out []laneView
	assert.NoError(t, m.Get(context.Background(), "lanes:snapshot:store-1", &out))
	assert.Equal(t, in, out)
}

func TestMemory_GetMiss(t *testing.T) {
	m := newTestMemory(t)
	defer m.Close()

	var out []laneView
	err := m.Get(context.Background(), "missing", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemory_Exists(t *testing.T) {
	m := newTestMemory(t)
	defer m.Close()

	assert.NoError(t, m.Set(context.Background(), "k", "v", time.Minute))

	found, err := m.Exists(context.Background(), "k")
	assert.NoError(t, err)
	assert.True(t, found)

	found, err = m.Exists(context.Background(), "absent")
	assert.NoError(t, err)
	assert.False(t, found)
}
