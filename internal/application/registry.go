package application

import (
	"fmt"
	"slices"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/ahrav/go-geomean/infrastructure/estimators"
	"github.com/ahrav/go-geomean/internal/ports"
)

// EstimatorFactory creates a fresh estimation method.
type EstimatorFactory func() ports.Estimator

// maxSuggestionDistance is the largest edit distance at which an unknown
// name still gets a "did you mean" hint.
const maxSuggestionDistance = 3

// EstimatorRegistry maps method names to factories. It comes with the
// exact, table-based and log-linear methods registered and can be extended
// at runtime.
//
// EstimatorRegistry is safe for concurrent use.
type EstimatorRegistry struct {
	// factories maps method names to their factory functions.
	factories map[string]EstimatorFactory
	// mu protects concurrent access to the factories map.
	mu sync.RWMutex
}

// NewEstimatorRegistry creates a registry with the built-in methods.
func NewEstimatorRegistry() *EstimatorRegistry {
	return &EstimatorRegistry{
		factories: map[string]EstimatorFactory{
			estimators.MethodExact:      func() ports.Estimator { return estimators.NewExact() },
			estimators.MethodTableBased: func() ports.Estimator { return estimators.NewTableBased() },
			estimators.MethodLogLinear:  func() ports.Estimator { return estimators.NewLogLinear() },
		},
	}
}

// Register adds or replaces the factory for name.
func (r *EstimatorRegistry) Register(name string, factory EstimatorFactory) error {
	if name == "" {
		return fmt.Errorf("method name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = factory
	return nil
}

// Create returns a new estimator for name. Unknown names fail with
// ports.ErrUnknownMethod and, when one is close enough, the nearest
// registered name.
func (r *EstimatorRegistry) Create(name string) (ports.Estimator, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		if suggestion, ok := r.Suggest(name); ok {
			return nil, fmt.Errorf("%w: %q (did you mean %q?)", ports.ErrUnknownMethod, name, suggestion)
		}
		return nil, fmt.Errorf("%w: %q (available: %v)", ports.ErrUnknownMethod, name, r.Names())
	}

	return factory(), nil
}

// CreateAll resolves every name in names, or every registered method when
// names is empty.
func (r *EstimatorRegistry) CreateAll(names []string) ([]ports.Estimator, error) {
	if len(names) == 0 {
		names = r.Names()
	}

	out := make([]ports.Estimator, 0, len(names))
	for _, name := range names {
		e, err := r.Create(name)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Names returns the registered method names in sorted order.
func (r *EstimatorRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Suggest returns the registered name with the smallest edit distance to
// name, if that distance is at most maxSuggestionDistance. Ties resolve to
// the alphabetically first name.
func (r *EstimatorRegistry) Suggest(name string) (string, bool) {
	best, bestDistance := "", maxSuggestionDistance+1
	for _, candidate := range r.Names() {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best, best != ""
}
