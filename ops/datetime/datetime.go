// Package datetime implements the Stamp/Elapsed word family: NOW, stamp
// arithmetic against an elapsed operand, stamp difference, and
// format/parse in the task's configured time zone. Built on
// value.Stamp/value.Elapsed wrapping time.Time/time.Duration, and on
// ExecContext.TimeZone for the host's configured location.
package datetime

import (
	"time"

	"github.com/xapiens/rpn/filter"
	"github.com/xapiens/rpn/operation"
	"github.com/xapiens/rpn/value"
)

const layout = time.RFC3339Nano

// Register adds NOW, STAMP+ELAPSED, STAMP-STAMP, STAMP.FORMAT, and
// STAMP.PARSE to reg.
func Register(reg *operation.Registry) error {
	if err := reg.Register(nowOp{}, nil); err != nil {
		return err
	}
	if err := reg.Register(addElapsedOp{}, stampElapsed); err != nil {
		return err
	}
	if err := reg.Register(subStampOp{}, bothStamp); err != nil {
		return err
	}
	if err := reg.Register(formatOp{}, topStamp); err != nil {
		return err
	}
	if err := reg.Register(parseOp{}, filter.TopString); err != nil {
		return err
	}
	return nil
}

var (
	stampElapsed = filter.New().Is(0, filter.TagElapsed).Is(1, filter.TagStamp).And().Build()
	bothStamp    = filter.New().Is(0, filter.TagStamp).Is(1, filter.TagStamp).And().Build()
	topStamp     = filter.New().Is(0, filter.TagStamp).Build()
)

type nowOp struct{}

func (nowOp) Name() string           { return "NOW" }
func (nowOp) Filter() *filter.Filter { return nil }
func (nowOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (nowOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	ctx.Stack().Push(value.Stamp{T: time.Now().In(ctx.TimeZone())})
	return nil
}

// addElapsedOp implements STAMP+ELAPSED: ( stamp elapsed -- stamp' ).
type addElapsedOp struct{}

func (addElapsedOp) Name() string           { return "STAMP+ELAPSED" }
func (addElapsedOp) Filter() *filter.Filter { return nil }
func (addElapsedOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (addElapsedOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	e, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	s, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	el, ok := e.(value.Elapsed)
	if !ok {
		return &value.ConvertFailedError{From: e.Type(), To: "elapsed", Detail: "STAMP+ELAPSED"}
	}
	st, ok := s.(value.Stamp)
	if !ok {
		return &value.ConvertFailedError{From: s.Type(), To: "stamp", Detail: "STAMP+ELAPSED"}
	}
	ctx.Stack().Push(value.Stamp{T: st.T.Add(el.D)})
	return nil
}

// subStampOp implements STAMP-STAMP: ( stamp stamp -- elapsed ), the
// difference (second-popped minus first-popped, i.e. older minus newer in
// source order x y - reads as x-y) between two timestamps.
type subStampOp struct{}

func (subStampOp) Name() string           { return "STAMP-STAMP" }
func (subStampOp) Filter() *filter.Filter { return nil }
func (subStampOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (subStampOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	y, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	x, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	sy, ok := y.(value.Stamp)
	if !ok {
		return &value.ConvertFailedError{From: y.Type(), To: "stamp", Detail: "STAMP-STAMP"}
	}
	sx, ok := x.(value.Stamp)
	if !ok {
		return &value.ConvertFailedError{From: x.Type(), To: "stamp", Detail: "STAMP-STAMP"}
	}
	ctx.Stack().Push(value.Elapsed{D: sx.T.Sub(sy.T)})
	return nil
}

// formatOp implements STAMP.FORMAT: ( stamp -- text ), rendered in the
// task's configured time zone using RFC3339Nano.
type formatOp struct{}

func (formatOp) Name() string           { return "STAMP.FORMAT" }
func (formatOp) Filter() *filter.Filter { return nil }
func (formatOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (formatOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	s, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	st, ok := s.(value.Stamp)
	if !ok {
		return &value.ConvertFailedError{From: s.Type(), To: "stamp", Detail: "STAMP.FORMAT"}
	}
	ctx.Stack().Push(value.Text(st.T.In(ctx.TimeZone()).Format(layout)))
	return nil
}

// parseOp implements STAMP.PARSE: ( text -- stamp ), parsed as RFC3339Nano
// and reinterpreted in the task's configured time zone.
type parseOp struct{}

func (parseOp) Name() string           { return "STAMP.PARSE" }
func (parseOp) Filter() *filter.Filter { return nil }
func (parseOp) SetUp(operation.SetUpContext, any) (any, error) {
	return nil, nil
}
func (parseOp) Exec(ctx operation.ExecContext, _ *operation.Reference) error {
	v, err := ctx.Stack().Pop()
	if err != nil {
		return err
	}
	txt, ok := v.(value.Text)
	if !ok {
		return &value.ConvertFailedError{From: v.Type(), To: "text", Detail: "STAMP.PARSE"}
	}
	t, parseErr := time.ParseInLocation(layout, string(txt), ctx.TimeZone())
	if parseErr != nil {
		if ctx.FailReturnsNull() {
			ctx.Stack().Push(value.Null{})
			return nil
		}
		return &value.ConvertFailedError{From: "text", To: "stamp", Detail: parseErr.Error()}
	}
	ctx.Stack().Push(value.Stamp{T: t})
	return nil
}
