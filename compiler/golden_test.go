package compiler_test

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"go/scanner"
	"os"
	"path/filepath"
	"testing"

	"github.com/xapiens/rpn/compiler"
	"github.com/xapiens/rpn/internal/filetest"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/ops/container"
	"github.com/xapiens/rpn/ops/logic"
)

var testUpdateCompilerTests = flag.Bool("test.update-compiler-tests", false, "If set, replace expected compiler diagnostics with actual results.")

func goldenRegistry(t *testing.T) *operation.Registry {
	t.Helper()
	reg := operation.NewRegistry()
	if err := container.Register(reg); err != nil {
		t.Fatal(err)
	}
	if err := logic.Register(reg); err != nil {
		t.Fatal(err)
	}
	return reg
}

// TestCompileDiagnostics drives the compiler over every fixture in
// testdata/in and compares the accumulated diagnostics (or "ok" when the
// source compiles cleanly) against the matching golden file in testdata/out,
// the same scanner.ErrorList accumulation a real caller would observe.
func TestCompileDiagnostics(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".rpn") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			c := compiler.New(fi.Name(), string(src), nil, nil, goldenRegistry(t), 2)
			_, compErr := c.Compile()

			var buf bytes.Buffer
			var list scanner.ErrorList
			switch {
			case compErr == nil:
				buf.WriteString("ok\n")
			case errors.As(compErr, &list):
				for _, e := range list {
					fmt.Fprintf(&buf, "%s\n", e)
				}
			default:
				fmt.Fprintf(&buf, "error: %s\n", compErr)
			}

			filetest.DiffErrors(t, fi, buf.String(), resultDir, testUpdateCompilerTests)
		})
	}
}
