package mqstream

import (
	"fmt"

	"github.com/gonzalop/mqstream/internal/packets"
)

// Constructor returns an empty packet ready to Read a frame.
type Constructor func() Packet

// Registry maps the 4-bit packet type code to a packet constructor.
//
// A Registry is not safe for concurrent modification. Register custom types
// before handing the registry to NewDecoder; the decoder keeps its own copy.
type Registry struct {
	ctors [16]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a new registry holding the fourteen MQTT 3.1.1
// control packets. Codes 0 and 15 are left free.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for code := range r.ctors {
		if ctor := packets.Constructor(uint8(code)); ctor != nil {
			r.ctors[code] = ctor
		}
	}
	return r
}

// Register binds code to ctor, replacing any previous binding. A nil ctor
// removes the binding.
func (r *Registry) Register(code uint8, ctor Constructor) error {
	if int(code) >= len(r.ctors) {
		return fmt.Errorf("packet type %d out of range 0-15", code)
	}
	r.ctors[code] = ctor
	return nil
}

// Lookup returns the constructor for code, or nil.
func (r *Registry) Lookup(code uint8) Constructor {
	if int(code) >= len(r.ctors) {
		return nil
	}
	return r.ctors[code]
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	c := *r
	return &c
}
