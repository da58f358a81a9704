// Package dynvar keeps a process-wide registry of named dynamic variables.
// Each variable is a stack of bindings; the top of the stack is the active
// ambient binding that Get and Set operate on. Bind pushes a temporary
// shadow binding that its restore function pops, giving stack-scoped
// shadowing in the style of dynamically scoped languages.
//
// The registry is process-global, not goroutine-local. Goroutines that Bind
// the same variable concurrently shadow each other's view of it; callers
// needing isolation must serialize access to the variables they share.
package dynvar

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnbound is returned when a name has no active binding.
var ErrUnbound = errors.New("unbound dynamic variable")

type variable struct {
	// stack always has at least one element while the variable is defined
	stack []any
}

var (
	mu       sync.RWMutex
	registry = map[string]*variable{}
)

// Define establishes name with v as its base binding.
// Redefining an existing name replaces its whole binding stack.
func Define(name string, v any) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = &variable{stack: []any{v}}
}

// Undefine removes name and all of its bindings.
func Undefine(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(registry, name)
}

// Get returns the active binding of name, or ErrUnbound.
func Get(name string) (any, error) {
	mu.RLock()
	defer mu.RUnlock()
	cell, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnbound, name)
	}
	return cell.stack[len(cell.stack)-1], nil
}

// Set replaces the active binding of name with v, or returns ErrUnbound.
// When a shadow binding is installed, Set writes through to the shadow and
// leaves the outer bindings untouched.
func Set(name string, v any) error {
	mu.Lock()
	defer mu.Unlock()
	cell, ok := registry[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnbound, name)
	}
	cell.stack[len(cell.stack)-1] = v
	return nil
}

// Bind pushes v as a temporary shadow binding of name and returns a restore
// function that pops it. Restores must run in reverse order of the binds
// they pair with (defer gives this for free). Calling restore more than once
// is a no-op.
func Bind(name string, v any) (restore func(), err error) {
	mu.Lock()
	defer mu.Unlock()
	cell, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnbound, name)
	}
	cell.stack = append(cell.stack, v)

	restored := false
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if restored {
			return
		}
		restored = true
		cell.stack = cell.stack[:len(cell.stack)-1]
	}, nil
}
