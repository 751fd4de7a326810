package experiment

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/fdtdabc/internal/config"
)

// SessionFactory builds a session for a validated scene.
type SessionFactory func(scene *config.Scene, log logrus.FieldLogger) (Session, error)

// Registry maps a field precision to the session constructor for it.
type Registry struct {
	sessions map[string]SessionFactory
}

func NewRegistry() *Registry {
	r := &Registry{sessions: make(map[string]SessionFactory)}

	r.sessions["float32"] = newSession[float32]
	r.sessions["float64"] = newSession[float64]

	return r
}

// Register adds or replaces the factory for precision.
func (r *Registry) Register(precision string, f SessionFactory) {
	r.sessions[precision] = f
}

func (r *Registry) Create(precision string, scene *config.Scene, log logrus.FieldLogger) (Session, error) {
	f, ok := r.sessions[precision]
	if !ok {
		return nil, fmt.Errorf("unknown precision: %s", precision)
	}
	return f(scene, log)
}

func (r *Registry) Precisions() []string {
	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
