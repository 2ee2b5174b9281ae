// Package engine is the embedding façade: it owns the one-time built-in
// operation registry, compiles source against it (optionally seeded with
// ambient macros/words), and runs a compiled Program against a
// host-supplied task.Context. Compile is pure given its ambient
// macros/words; Execute creates one fresh task.Task per call.
package engine

import (
	"fmt"

	"github.com/xapiens/rpn/compiler"
	"github.com/xapiens/rpn/macro"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/ops/arith"
	"github.com/xapiens/rpn/ops/bigdecimal"
	"github.com/xapiens/rpn/ops/container"
	"github.com/xapiens/rpn/ops/datetime"
	"github.com/xapiens/rpn/ops/logic"
	"github.com/xapiens/rpn/ops/stackops"
	"github.com/xapiens/rpn/ops/strings"
	"github.com/xapiens/rpn/task"
	"github.com/xapiens/rpn/value"
)

// DefaultLoopLimit bounds macro-expansion recursion depth and the highest
// variable-access index recognized, when an Engine is built with New (not
// NewWithLoopLimit).
const DefaultLoopLimit = 1000

// Engine holds the immutable, engine-wide registry plus whatever ambient
// macros/words were pre-compiled at construction — shared, read-only
// state every later Compile call inherits.
type Engine struct {
	registry  *operation.Registry
	macros    map[string]*macro.Def
	words     map[string]*compiler.Program
	loopLimit int
}

// New builds an Engine: it instantiates every built-in operation module
// and registers it into a name→operation map, then pre-compiles
// ambientMacroTexts and ambientWordTexts, in order, into the engine-level
// (macros, words) pair every later Compile inherits.
//
// ambientWordTexts are each compiled as a standalone source containing
// one or more inline `: NAME ... ;` word definitions; only the resulting
// word table is kept; any trailing top-level references outside a word
// definition are accepted but discarded, since ambient word texts exist
// only to populate the shared word map.
func New(ambientMacroTexts, ambientWordTexts []string) (*Engine, error) {
	return NewWithLoopLimit(ambientMacroTexts, ambientWordTexts, DefaultLoopLimit)
}

// NewWithLoopLimit is New with an explicit loop limit, for hosts that need
// to bound macro-expansion recursion and variable-index range more (or
// less) tightly than DefaultLoopLimit.
func NewWithLoopLimit(ambientMacroTexts, ambientWordTexts []string, loopLimit int) (*Engine, error) {
	reg := operation.NewRegistry()
	for _, register := range []func(*operation.Registry) error{
		stackops.Register,
		arith.Register,
		bigdecimal.Register,
		logic.Register,
		container.Register,
		datetime.Register,
		strings.Register,
	} {
		if err := register(reg); err != nil {
			return nil, fmt.Errorf("engine: registering built-ins: %w", err)
		}
	}

	macros := make(map[string]*macro.Def, len(ambientMacroTexts))
	for _, text := range ambientMacroTexts {
		def, err := macro.ParseDef(text)
		if err != nil {
			return nil, fmt.Errorf("engine: parsing ambient macro %q: %w", text, err)
		}
		macros[def.Key] = def
	}

	words := make(map[string]*compiler.Program)
	for i, src := range ambientWordTexts {
		c := compiler.New(fmt.Sprintf("ambient-word-%d", i), src, macros, words, reg, loopLimit)
		if _, err := c.Compile(); err != nil {
			return nil, fmt.Errorf("engine: compiling ambient word text %d: %w", i, err)
		}
		for name, prog := range c.Words() {
			words[name] = prog
		}
	}

	return &Engine{registry: reg, macros: macros, words: words, loopLimit: loopLimit}, nil
}

// Compile parses and resolves source into a frozen Program, inheriting
// the engine's ambient macros/words (copied so a per-call DefineMacro or
// inline word-def in source never mutates the engine-level tables —
// per-compilation macro/word definitions are scoped to that compilation
// alone).
func (e *Engine) Compile(source string) (*compiler.Program, error) {
	macros := make(map[string]*macro.Def, len(e.macros))
	for k, v := range e.macros {
		macros[k] = v
	}
	words := make(map[string]*compiler.Program, len(e.words))
	for k, v := range e.words {
		words[k] = v
	}

	c := compiler.New("program", source, macros, words, e.registry, e.loopLimit)
	return c.Compile()
}

// Execute runs program to completion against a fresh task.Task borrowing
// ctx: one Task per program run.
func (e *Engine) Execute(program *compiler.Program, ctx task.Context) (value.Value, error) {
	tk := task.New(ctx)
	return tk.Run(program)
}
