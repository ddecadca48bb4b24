// Package codec provides conversion hooks for logical types: a logical value
// (time.Time, uuid.UUID, decimal.Decimal, ...) is stored as a value of an
// underlying primitive type and converted on the way in and out.
package codec

import (
	"fmt"
	"sync"
)

// Codec converts between a logical type's domain value and the in-memory value
// of its underlying type.
type Codec interface {
	// ToValue converts a domain value into an underlying value.
	ToValue(v any) (any, error)
	// FromValue converts a decoded underlying value into a domain value.
	FromValue(v any) (any, error)
}

// Props carries the schema attributes a Factory may need.
type Props struct {
	// Underlying is the underlying type name ("int", "long", "bytes", "fixed",
	// "string", ...).
	Underlying string
	// Size is the fixed size in bytes (0 unless Underlying is "fixed").
	Size      int
	Precision int
	Scale     int
}

// Factory builds a Codec for one schema occurrence of a logical type.
type Factory func(Props) (Codec, error)

// Funcs adapts a pair of functions to Codec.
type Funcs struct {
	To   func(any) (any, error)
	From func(any) (any, error)
}

func (f Funcs) ToValue(v any) (any, error)   { return f.To(v) }
func (f Funcs) FromValue(v any) (any, error) { return f.From(v) }

// Registry maps logical type names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{factories: map[string]Factory{}} }

// DefaultRegistry returns a new registry holding the standard Avro logical
// types plus "rfc3339".
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("date", underlying(Date(), "int"))
	r.Register("time-millis", underlying(TimeMillis(), "int"))
	r.Register("time-micros", underlying(TimeMicros(), "long"))
	r.Register("timestamp-millis", underlying(TimestampMillis(), "long"))
	r.Register("timestamp-micros", underlying(TimestampMicros(), "long"))
	r.Register("local-timestamp-millis", underlying(LocalTimestampMillis(), "long"))
	r.Register("local-timestamp-micros", underlying(LocalTimestampMicros(), "long"))
	r.Register("uuid", underlying(UUID(), "string"))
	r.Register("rfc3339", underlying(RFC3339(), "string"))
	r.Register("decimal", func(p Props) (Codec, error) {
		if p.Underlying != "bytes" && p.Underlying != "fixed" {
			return nil, fmt.Errorf("codec: decimal over %q", p.Underlying)
		}
		return Decimal(p.Precision, p.Scale, p.Size)
	})
	return r
}

// Register installs f under name, replacing any previous factory.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[name] = f
}

// Lookup builds the codec registered under name. ok is false when no factory is
// registered.
func (r *Registry) Lookup(name string, p Props) (c Codec, ok bool, err error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	c, err = f(p)
	return c, true, err
}

// underlying restricts a fixed codec to one underlying type.
func underlying(c Codec, typ string) Factory {
	return func(p Props) (Codec, error) {
		if p.Underlying != typ {
			return nil, fmt.Errorf("codec: logical type requires %q, got %q", typ, p.Underlying)
		}
		return c, nil
	}
}
