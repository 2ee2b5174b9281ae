package task

import "log"

// StdLogger adapts the standard library's log package to
// operation.Logger, for hosts (cmd/rpncalc, tests) that have no logging
// framework of their own to wire in.
type StdLogger struct{}

func (StdLogger) Warnf(format string, args ...any) {
	log.Printf("WARN "+format, args...)
}

func (StdLogger) Errorf(format string, args ...any) {
	log.Printf("ERROR "+format, args...)
}
