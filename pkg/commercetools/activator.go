package commercetools

import (
	"reflect"
	"sync"

	"github.com/tidwall/gjson"
)

// ModelUnmarshaler is the binding contract between a decoded JSON payload
// and a concrete result model. A result type opts into activation by
// implementing it on its pointer receiver; no other construction shape is
// attempted.
type ModelUnmarshaler interface {
	UnmarshalModel(data gjson.Result) error
}

// activator builds a new instance of one fixed type from a payload. A nil
// activator marks the type as unsupported.
type activator func(data gjson.Result) (interface{}, bool)

type registryEntry struct {
	fn activator
}

var modelUnmarshalerType = reflect.TypeOf((*ModelUnmarshaler)(nil)).Elem()

// Registry classifies result types and memoizes a per-type activator. Each
// type is inspected at most once per registry: supported types get a reusable
// construction function, unsupported types get a negative entry so later
// lookups skip re-inspection. Types are never redefined at runtime, so a
// classification never changes and entries are never evicted; the registry
// grows with the number of distinct result types in the program and is
// unbounded by design.
//
// The registry is safe for concurrent use. First-time lookups for the same
// type may race and redundantly build the activator twice; the result is
// deterministic per type, so last write wins.
type Registry struct {
	caching bool
	entries sync.Map // reflect.Type -> registryEntry
}

// NewRegistry creates a caching registry.
func NewRegistry() *Registry {
	return &Registry{caching: true}
}

// NewUncachedRegistry creates a registry that repeats the type inspection on
// every lookup. Observable behavior is identical to the caching registry,
// only slower.
func NewUncachedRegistry() *Registry {
	return &Registry{}
}

// lookup returns the activator for t, building and (when caching) storing it
// on first use.
func (r *Registry) lookup(t reflect.Type) activator {
	if r.caching {
		if entry, ok := r.entries.Load(t); ok {
			return entry.(registryEntry).fn
		}
	}

	fn := buildActivator(t)

	if r.caching {
		r.entries.Store(t, registryEntry{fn: fn})
	}

	return fn
}

// buildActivator inspects t for the ModelUnmarshaler contract.
func buildActivator(t reflect.Type) activator {
	if !reflect.PointerTo(t).Implements(modelUnmarshalerType) {
		return nil
	}

	return func(data gjson.Result) (interface{}, bool) {
		value := reflect.New(t)

		model, ok := value.Interface().(ModelUnmarshaler)
		if !ok {
			return nil, false
		}

		err := model.UnmarshalModel(data)
		if err != nil {
			return nil, false
		}

		return value.Interface(), true
	}
}

// CreateInstance constructs a new T from the decoded payload. It returns
// (nil, false) when T is unsupported or its UnmarshalModel rejects the
// payload; it never panics.
func CreateInstance[T any](r *Registry, data gjson.Result) (*T, bool) {
	fn := r.lookup(reflect.TypeOf((*T)(nil)).Elem())
	if fn == nil {
		return nil, false
	}

	instance, ok := fn(data)
	if !ok {
		return nil, false
	}

	result, ok := instance.(*T)
	if !ok {
		return nil, false
	}

	return result, true
}

// Supported reports whether the registry can construct instances of T.
func Supported[T any](r *Registry) bool {
	return r.lookup(reflect.TypeOf((*T)(nil)).Elem()) != nil
}
