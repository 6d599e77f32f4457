// Package xexectest provides a scripted xexec.Runner for tests.
package xexectest

import (
	"context"
	"strings"
	"sync"

	"frameworks/api_tunnels/internal/xexec"
)

// Call is one recorded invocation.
type Call struct {
	Name string
	Args []string
}

// String renders the call as a command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Response is what the stub returns for a matching command line prefix.
type Response struct {
	Result xexec.Result
	Err    error
}

// Stub answers Run from a table keyed by command line prefix. Unmatched
// commands succeed with empty output.
type Stub struct {
	mu        sync.Mutex
	responses []prefixed
	calls     []Call
}

type prefixed struct {
	prefix string
	resp   Response
}

// On registers resp for any command line starting with prefix. Later
// registrations win.
func (s *Stub) On(prefix string, resp Response) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, prefixed{prefix: prefix, resp: resp})
	return s
}

// Run implements xexec.Runner.
func (s *Stub) Run(_ context.Context, name string, args ...string) (xexec.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := Call{Name: name, Args: append([]string(nil), args...)}
	s.calls = append(s.calls, call)
	line := call.String()
	for i := len(s.responses) - 1; i >= 0; i-- {
		if strings.HasPrefix(line, s.responses[i].prefix) {
			return s.responses[i].resp.Result, s.responses[i].resp.Err
		}
	}
	return xexec.Result{}, nil
}

// Calls returns a copy of every recorded invocation.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Lines returns the recorded invocations as command lines.
func (s *Stub) Lines() []string {
	calls := s.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}
