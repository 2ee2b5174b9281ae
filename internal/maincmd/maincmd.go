// Package maincmd implements the rpncalc command dispatch: a single
// mainer.Cmd with a handful of subcommands (run/compile/tokenize),
// resolved by reflection — any exported *Cmd method with the right shape
// is registered as a subcommand automatically.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "rpncalc"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<source>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<source>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the RPN stack language.

<source> is a file path, or "-" to read from stdin; it defaults to "-"
when omitted.

The <command> can be one of:
       run                        Compile and execute <source>, printing
                                 the resulting value (default command).
       compile                    Compile <source> and print a one-line
                                 program summary (name, file, and
                                 reference count).
       tokenize                   Run the lexer/macro-preprocessor phase
                                 over <source> and print the token
                                 stream.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Valid flag options for the <run> command are:
       -input values             Comma-separated input values (1-based
                                 $N access), each parsed as a long, a
                                 double, or else left as text.
       -param values              Comma-separated parameter strings
                                 (1-based @N access).
       -fail-null                 Push Null instead of failing on a
                                 runtime arithmetic/conversion fault.

More information on the xapiens/rpn repository.
`, binName)
)

// Cmd is the rpncalc mainer.Cmd: SetArgs/SetFlags/Validate/Main match the
// shape mainer.Parser expects.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Input    string `flag:"input"`
	Param    string `flag:"param"`
	FailNull bool   `flag:"fail-null"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	cmdName := "run"
	rest := c.args
	if len(c.args) > 0 {
		if _, known := buildCmds(c)[c.args[0]]; known {
			cmdName = c.args[0]
			rest = c.args[1:]
		}
	}
	if len(rest) > 1 {
		return errors.New("at most one source argument is accepted")
	}

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}
	c.args = rest

	if (c.Input != "" || c.Param != "" || c.FailNull) && cmdName != "run" {
		return fmt.Errorf("%s: -input/-param/-fail-null only apply to run", cmdName)
	}

	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: strings.ToUpper(binName) + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds builds the reflection-based command table: any exported *Cmd
// method matching the (context.Context, mainer.Stdio, []string) error
// shape is registered under its lower-cased name.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
