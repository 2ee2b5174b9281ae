package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/xapiens/rpn/engine"
	"github.com/xapiens/rpn/token"
	"github.com/xapiens/rpn/tokenizer"
)

// Tokenize runs the lexer/macro-preprocessor phase over the source named
// by args[0] (or stdin) and prints the resulting token stream, one per
// line.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := readSource(args, stdio.Stdin)
	if err != nil {
		return printError(stdio, fmt.Errorf("reading source: %w", err))
	}

	tz := tokenizer.New("source", src, nil, engine.DefaultLoopLimit)
	for {
		tok, err := tz.Next()
		if err != nil {
			return printError(stdio, err)
		}
		fmt.Fprintf(stdio.Stdout, "%s: %s\n", tok.Pos, tok)
		if tok.Kind == token.EOF {
			return nil
		}
	}
}
