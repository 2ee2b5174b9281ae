package maincmd

import (
	"strconv"
	"strings"
	"time"

	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/task"
	"github.com/xapiens/rpn/value"
)

// cliContext is the default in-process task.Context rpncalc's run command
// builds from its own flag-parsed -input/-param lists.
type cliContext struct {
	inputs   []value.Value // 1-based: inputs[0] is unused
	params   []string      // 1-based: params[0] is unused
	failNull bool
	logger   operation.Logger
}

func newCLIContext(inputCSV, paramCSV string, failNull bool) *cliContext {
	c := &cliContext{failNull: failNull, logger: task.StdLogger{}}
	c.inputs = append(c.inputs, nil)
	for _, tok := range splitCSV(inputCSV) {
		c.inputs = append(c.inputs, parseInputToken(tok))
	}
	c.params = append(c.params, "")
	c.params = append(c.params, splitCSV(paramCSV)...)
	return c
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func parseInputToken(tok string) value.Value {
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return value.Long(n)
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return value.Double(f)
	}
	return value.Text(tok)
}

func (c *cliContext) Input(i int) (operation.InputValue, bool) {
	if i <= 0 || i >= len(c.inputs) || c.inputs[i] == nil {
		return operation.InputValue{}, false
	}
	return operation.InputValue{Value: c.inputs[i]}, true
}

func (c *cliContext) InputNormalized(i int) (operation.InputValue, bool) { return c.Input(i) }

func (c *cliContext) SetInput(i int, v value.Value) {
	for i >= len(c.inputs) {
		c.inputs = append(c.inputs, nil)
	}
	c.inputs[i] = v
}

func (c *cliContext) Param(i int) (string, bool) {
	if i <= 0 || i >= len(c.params) {
		return "", false
	}
	return c.params[i], true
}

func (c *cliContext) TimeZone() *time.Location { return time.Local }

func (c *cliContext) Logger() operation.Logger { return c.logger }

func (c *cliContext) FailReturnsNull() bool { return c.failNull }
