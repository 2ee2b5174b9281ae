// Package grammar holds the EBNF grammar this module's tokenizer/compiler
// implement, checked for well-formedness at test time. This is a flat
// reference-list grammar (compiler/program.go's doc comment is its prose
// restatement), not a block-structured one.
package grammar

import (
	"os"
	"testing"

	"golang.org/x/exp/ebnf"
)

func TestEBNF(t *testing.T) {
	f, err := os.Open("rpn.ebnf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	g, err := ebnf.Parse("rpn.ebnf", f)
	if err != nil {
		t.Fatal(err)
	}
	if err := ebnf.Verify(g, "Program"); err != nil {
		t.Fatal(err)
	}
}
