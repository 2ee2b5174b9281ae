package maincmd

import (
	"io"
	"os"
)

// readSource reads the program source named by args' sole positional
// argument, defaulting to "-" (stdin) when none is given.
func readSource(args []string, stdin io.Reader) (string, error) {
	path := "-"
	if len(args) > 0 && args[0] != "" {
		path = args[0]
	}
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
