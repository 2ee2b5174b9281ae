package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/xapiens/rpn/engine"
)

// Run compiles and executes the source named by args[0] (or stdin),
// printing the resulting value — the default rpncalc command (section
// 6's CLI surface).
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
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

	cliCtx := newCLIContext(c.Input, c.Param, c.FailNull)
	result, err := eng.Execute(prog, cliCtx)
	if err != nil {
		return printError(stdio, fmt.Errorf("execute: %w", err))
	}

	fmt.Fprintln(stdio.Stdout, result)
	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	fmt.Fprintf(stdio.Stderr, "%s\n", err)
	return err
}
