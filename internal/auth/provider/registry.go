package provider

import "fmt"

// Registry holds all configured auth drivers and allows lookup by
// provider name. It performs no auth logic itself.
type Registry struct {
	drivers map[string]Driver
}

// NewRegistry registers the given drivers by name. Names must be unique.
func NewRegistry(list ...Driver) *Registry {
	m := make(map[string]Driver)
	for _, d := range list {
		m[d.Name()] = d
	}
	return &Registry{drivers: m}
}

// Get returns the driver by name or an error if not registered.
func (r *Registry) Get(name string) (Driver, error) {
	d, ok := r.drivers[name]
	if !ok {
		return nil, fmt.Errorf("unknown auth provider: %s", name)
	}
	return d, nil
}
