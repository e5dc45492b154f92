// Package module is the registry commands compose stage modules through
package module

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Module is what a stage module exposes to its command
// It lives apart from modkit so a module package can import both without a cycle
type Module interface {
	Ports() any
	Name() string
}

var (
	mu  sync.RWMutex
	reg = map[string]Module{}
)

// Register records m under its name; names are unique per process
func Register(m Module) error {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := reg[m.Name()]; dup {
		return fmt.Errorf("module: %q already registered", m.Name())
	}
	reg[m.Name()] = m
	return nil
}

// Unregister drops name from the registry
func Unregister(name string) {
	mu.Lock()
	delete(reg, name)
	mu.Unlock()
}

// Lookup returns the module registered under name
func Lookup(name string) (Module, bool) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := reg[name]
	return m, ok
}

// Names lists registered modules in order
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(reg))
	for n := range reg {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Reset clears the registry for tests
func Reset() {
	mu.Lock()
	reg = map[string]Module{}
	mu.Unlock()
}

// PortsOf finds a T in m's port set: the set itself or one of its exported fields
func PortsOf[T any](m Module) (t T, ok bool) {
	p := m.Ports()
	if p == nil {
		return t, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return t, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return t, false
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return t, false
}

// MustPortsOf is PortsOf that panics when m has no T
func MustPortsOf[T any](m Module) T {
	if v, ok := PortsOf[T](m); ok {
		return v
	}
	var zero T
	panic(fmt.Sprintf("module: %s exposes no %T", m.Name(), &zero))
}
