package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/xapiens/rpn/engine"
)

// Compile compiles the source named by args[0] (or stdin) and prints the
// resulting program's description, without executing it. There's no
// separate parse/resolve phase to expose here: this grammar has no
// standalone AST pass, so compiling is a single step.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := readSource(args, stdio.Stdin)
	if err != nil {
		return printError(stdio, fmt.Errorf("reading source: %w", err))
	}

	eng, err := engine.New(nil, nil)
	if err != nil {
		return printError(stdio, err)
	}

	prog, err := eng.Compile(src)
	if err != nil {
		return printError(stdio, fmt.Errorf("compile: %w", err))
	}

	fmt.Fprintln(stdio.Stdout, prog)
	return nil
}
