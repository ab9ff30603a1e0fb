package peaks

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// Func evaluates a shape on x with parameters p (ordered as Shape.Params)
// and writes the result into dst. dst and x have the same length.
type Func func(dst, x, p []float64)

// Shape describes one line shape.
type Shape struct {
	Name     string
	Params   []string
	Defaults []float64
	Eval     Func
}

// Index returns the position of the named parameter, or -1.
func (s Shape) Index(param string) int {
	for i, p := range s.Params {
		if p == param {
			return i
		}
	}
	return -1
}

// Registry maps shape names to their definitions.
type Registry struct {
	shapes map[string]Shape
}

var (
	errDuplicateShape = errors.New("duplicate shape")

	// ErrUnknownShape is returned by Lookup for unregistered names.
	ErrUnknownShape = errors.New("unknown peak shape")
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{shapes: make(map[string]Shape)}
}

// Register adds a shape.
func (r *Registry) Register(s Shape) error {
	if s.Name == "" {
		return errors.New("empty shape name")
	}

	if s.Eval == nil {
		return errors.New("nil shape function")
	}

	if len(s.Params) != len(s.Defaults) {
		return fmt.Errorf("shape %s: %d params but %d defaults", s.Name, len(s.Params), len(s.Defaults))
	}

	name := strings.ToLower(s.Name)
	if _, exists := r.shapes[name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateShape, name)
	}

	s.Name = name
	r.shapes[name] = s

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(s Shape) {
	err := r.Register(s)
	if err != nil {
		panic("peaks registry: " + err.Error())
	}
}

// Lookup returns the shape registered under name (case-insensitive).
// Unknown names yield an error wrapping [ErrUnknownShape] that names the
// closest registered shape.
func (r *Registry) Lookup(name string) (Shape, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if s, ok := r.shapes[key]; ok {
		return s, nil
	}

	if hint := r.closest(key); hint != "" {
		return Shape{}, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownShape, name, hint)
	}
	return Shape{}, fmt.Errorf("%w %q", ErrUnknownShape, name)
}

// Names returns the registered shape names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.shapes))
	for n := range r.shapes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) closest(name string) string {
	best, bestDist := "", 3
	for _, n := range r.Names() {
		if d := levenshtein.ComputeDistance(name, n); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry holding the built-in shapes.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		for _, s := range builtins() {
			r.MustRegister(s)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
