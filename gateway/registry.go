package gateway

import (
	"strings"
	"sync"
)

// Registry manages all payment gateway implementations
type Registry struct {
	gateways map[string]Factory
	mu       sync.RWMutex
}

// NewRegistry creates a new gateway registry
func NewRegistry() *Registry {
	return &Registry{
		gateways: make(map[string]Factory),
	}
}

// Register adds a gateway factory to the registry
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[normalizeName(name)] = factory
}

// Get retrieves a gateway factory by name
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.gateways[normalizeName(name)]
	if !exists {
		return nil, &GatewayNotFoundError{Name: name}
	}

	return factory, nil
}

// Create instantiates a gateway by name and, when cfg is non-empty,
// configures it. Configuration errors are returned as is so callers
// fail fast on missing credentials.
func (r *Registry) Create(name string, cfg Config) (Gateway, error) {
	factory, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	gw := factory()
	if len(cfg) > 0 {
		if err := gw.Configure(cfg); err != nil {
			return nil, err
		}
	}

	return gw, nil
}

// Names returns a list of all registered gateway names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}

	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DefaultRegistry is the global default gateway registry
var DefaultRegistry = NewRegistry()

// Register registers a gateway with the default registry
func Register(name string, factory Factory) {
	DefaultRegistry.Register(name, factory)
}

// Get retrieves a gateway factory from the default registry
func Get(name string) (Factory, error) {
	return DefaultRegistry.Get(name)
}

// Create creates a gateway instance from the default registry
func Create(name string, cfg Config) (Gateway, error) {
	return DefaultRegistry.Create(name, cfg)
}

// Names returns the names registered with the default registry
func Names() []string {
	return DefaultRegistry.Names()
}
