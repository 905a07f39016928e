package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfiler(t *testing.T) {
	p := NewProfiler()
	clock := time.Unix(0, 0)
	p.now = func() time.Time { return clock }

	p.BeginScope("geometry")
	clock = clock.Add(3 * time.Millisecond)
	assert.Equal(t, 3*time.Millisecond, p.EndScope("geometry"))

	p.BeginScope("lighting")
	clock = clock.Add(1500 * time.Microsecond)
	p.EndScope("lighting")

	assert.Zero(t, p.EndScope("never-started"))
	assert.Equal(t, 1500*time.Microsecond, p.Scope("lighting"))

	p.SetCount("lights", 12)
	p.SetCount("drawn", 3)
	s := p.StatsString()
	assert.Contains(t, s, "geometry       : 3.00 ms")
	assert.Contains(t, s, "lighting       : 1.50 ms")
	assert.Less(t, strings.Index(s, "drawn"), strings.Index(s, "lights"))
	assert.Less(t, strings.Index(s, "geometry"), strings.Index(s, "lighting"))
}
