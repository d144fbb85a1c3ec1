// Package filter compiles user-supplied expressions for selecting itinerary
// activities, e.g. `indoor and free` or `category == "park" and min_age <= 2`.
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/prasadnitish/StrollerScout-sub001/planner"
)

// Match reports whether an activity satisfies a compiled filter.
type Match func(planner.Activity) bool

const defaultCacheSize = 50

// Compiler compiles filter expressions, caching compiled programs.
type Compiler struct {
	cache *lruCache
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithCacheSize sets how many compiled programs are kept.
func WithCacheSize(size int) Option {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// NewCompiler creates an expression compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{cache: newLRUCache(defaultCacheSize)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile turns an expression into a match function. Expressions must
// evaluate to a boolean over the activity environment.
func (c *Compiler) Compile(expression string) (Match, error) {
	program, ok := c.cache.Get(expression)
	if !ok {
		var err error
		program, err = expr.Compile(expression,
			expr.Env(activityEnv(planner.Activity{})),
			expr.AsBool(),
		)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		c.cache.Put(expression, program)
	}

	return func(a planner.Activity) bool {
		out, err := vm.Run(program, activityEnv(a))
		if err != nil {
			return false
		}
		matched, isBool := out.(bool)
		return isBool && matched
	}, nil
}

// activityEnv exposes activity fields under the names filters use.
func activityEnv(a planner.Activity) map[string]any {
	return map[string]any{
		"name":     a.Name,
		"category": a.Category,
		"indoor":   a.Indoor,
		"free":     a.Free,
		"min_age":  a.MinAge,
	}
}
