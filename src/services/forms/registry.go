package forms

import (
	"strings"
	"sync"
)

// ShapeRegistry caches compiled record shapes per tenant+collection with
// get-or-create semantics. It replaces ambient "register model if missing"
// flags: compilation is pure, so a rebuild after invalidation is always safe.
type ShapeRegistry struct {
	mu     sync.RWMutex
	shapes map[string]*RecordShape
}

// Shapes is the process-wide registry.
var Shapes = NewShapeRegistry()

func NewShapeRegistry() *ShapeRegistry {
	return &ShapeRegistry{shapes: map[string]*RecordShape{}}
}

func registryKey(tenant, collection string) string {
	return tenant + "/" + collection
}

// Get returns the cached shape for tenant+collection, building it once on
// miss. Concurrent callers may race to build; the build is pure so the
// winner's shape is equivalent to the loser's.
func (r *ShapeRegistry) Get(tenant, collection string, build func() *RecordShape) *RecordShape {
	key := registryKey(tenant, collection)

	r.mu.RLock()
	shape, ok := r.shapes[key]
	r.mu.RUnlock()
	if ok {
		return shape
	}

	shape = build()

	r.mu.Lock()
	if existing, ok := r.shapes[key]; ok {
		shape = existing
	} else {
		r.shapes[key] = shape
	}
	r.mu.Unlock()

	return shape
}

// Invalidate drops every cached shape for the given tenant whose collection
// is the sanitized slug or derived from it (project-suffixed collections).
func (r *ShapeRegistry) Invalidate(tenant, sanitizedSlug string) {
	prefix := registryKey(tenant, sanitizedSlug)

	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.shapes {
		if key == prefix || strings.HasPrefix(key, prefix+"_") {
			delete(r.shapes, key)
		}
	}
}
