package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicClock_Steps(t *testing.T) {
	c := NewDeterministicClock()

	assert.True(t, c.Now().Equal(Epoch))
	assert.True(t, c.Now().Equal(Epoch.Add(time.Second)))
	assert.Equal(t, int64(2), c.Calls())
}

func TestDeterministicClock_Reset(t *testing.T) {
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewDeterministicClockAt(start, time.Minute)

	c.Now()
	c.Now()
	c.Reset()

	assert.True(t, c.Now().Equal(start))
}

func TestDeterministicClock_Concurrent(t *testing.T) {
	c := NewDeterministicClock()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), c.Calls())
}

func TestSequentialIDGenerator(t *testing.T) {
	g := NewSequentialIDGenerator("")
	assert.Equal(t, "entry-1", g.Generate())
	assert.Equal(t, "entry-2", g.Generate())

	h := NewSequentialIDGenerator("calc")
	assert.Equal(t, "calc-1", h.Generate())
}
