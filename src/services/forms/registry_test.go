package forms

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func shapeFor(collection string) *RecordShape {
	return &RecordShape{Collection: collection, index: map[string]int{}}
}

func TestShapeRegistryGetOrCreate(t *testing.T) {
	r := NewShapeRegistry()

	builds := 0
	build := func() *RecordShape {
		builds++
		return shapeFor("intake")
	}

	first := r.Get("acme", "intake", build)
	second := r.Get("acme", "intake", build)

	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
}

func TestShapeRegistryTenantIsolation(t *testing.T) {
	r := NewShapeRegistry()

	a := r.Get("acme", "intake", func() *RecordShape { return shapeFor("intake") })
	b := r.Get("globex", "intake", func() *RecordShape { return shapeFor("intake") })

	assert.NotSame(t, a, b)
}

func TestShapeRegistryInvalidate(t *testing.T) {
	r := NewShapeRegistry()

	r.Get("acme", "intake", func() *RecordShape { return shapeFor("intake") })
	r.Get("acme", "intake_block_a", func() *RecordShape { return shapeFor("intake_block_a") })
	r.Get("acme", "intakelog", func() *RecordShape { return shapeFor("intakelog") })
	r.Get("globex", "intake", func() *RecordShape { return shapeFor("intake") })

	r.Invalidate("acme", "intake")

	rebuilds := 0
	rebuild := func(c string) func() *RecordShape {
		return func() *RecordShape {
			rebuilds++
			return shapeFor(c)
		}
	}

	// exact and project-suffixed entries were dropped
	r.Get("acme", "intake", rebuild("intake"))
	r.Get("acme", "intake_block_a", rebuild("intake_block_a"))
	assert.Equal(t, 2, rebuilds)

	// unrelated collection and other tenants survive
	r.Get("acme", "intakelog", rebuild("intakelog"))
	r.Get("globex", "intake", rebuild("intake"))
	assert.Equal(t, 2, rebuilds)
}

func TestShapeRegistryConcurrentGet(t *testing.T) {
	r := NewShapeRegistry()

	var wg sync.WaitGroup
	results := make([]*RecordShape, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Get("acme", "intake", func() *RecordShape { return shapeFor("intake") })
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assert.Same(t, results[0], s)
	}
}
