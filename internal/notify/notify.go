// Package notify abstracts user-facing toasts so the action layer can
// report outcomes without knowing whether a TUI or a plain terminal is
// listening.
package notify

import "fmt"

// Notifier receives user-facing outcome messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// Func adapts a single function into a Notifier. The kind argument is one
// of "success", "error" or "info".
type Func func(kind, msg string)

func (f Func) Success(msg string) { f("success", msg) }
func (f Func) Error(msg string)   { f("error", msg) }
func (f Func) Info(msg string)    { f("info", msg) }

// Stderr is a Notifier for non-interactive runs. It writes everything to
// the provided printf-style function, prefixed by kind.
func Stderr(printf func(format string, args ...interface{})) Notifier {
	return Func(func(kind, msg string) {
		printf("[%s] %s\n", kind, msg)
	})
}

// Discard drops every notification.
var Discard Notifier = Func(func(string, string) {})

// Recorder captures notifications for tests.
type Recorder struct {
	Events []Event
}

// Event is one recorded notification.
type Event struct {
	Kind string
	Msg  string
}

func (r *Recorder) Success(msg string) { r.record("success", msg) }
func (r *Recorder) Error(msg string)   { r.record("error", msg) }
func (r *Recorder) Info(msg string)    { r.record("info", msg) }

func (r *Recorder) record(kind, msg string) {
	r.Events = append(r.Events, Event{Kind: kind, Msg: msg})
}

// Last returns the most recent event, or a zero Event when none happened.
func (r *Recorder) Last() Event {
	if len(r.Events) == 0 {
		return Event{}
	}
	return r.Events[len(r.Events)-1]
}

// String renders the recorded stream for failure messages.
func (r *Recorder) String() string {
	return fmt.Sprintf("%v", r.Events)
}
