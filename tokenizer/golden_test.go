package tokenizer_test

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xapiens/rpn/internal/filetest"
	"github.com/xapiens/rpn/token"
	"github.com/xapiens/rpn/tokenizer"
)

var testUpdateTokenizerTests = flag.Bool("test.update-tokenizer-tests", false, "If set, replace expected tokenizer test results with actual results.")

// TestTokenize drives the tokenizer over every fixture in testdata/in and
// compares the printed token stream against the matching golden file in
// testdata/out.
func TestTokenize(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".rpn") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			var buf bytes.Buffer
			tz := tokenizer.New(fi.Name(), string(src), nil, 1000)
			for {
				tok, err := tz.Next()
				if err != nil {
					fmt.Fprintf(&buf, "error: %s\n", err)
					break
				}
				fmt.Fprintf(&buf, "%s: %s\n", tok.Pos, tok)
				if tok.Kind == token.EOF {
					break
				}
			}

			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateTokenizerTests)
		})
	}
}
