package wireguard

import (
	"context"
	"errors"
	"testing"

	"frameworks/api_tunnels/internal/apperrors"
	"frameworks/api_tunnels/internal/xexec"
	"frameworks/api_tunnels/internal/xexec/xexectest"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		res      xexec.Result
		err      error
		status   OutcomeStatus
		code     int
		stderrIs string
	}{
		{"success", xexec.Result{}, nil, OutcomeSuccess, 0, ""},
		{"already down", xexec.Result{ExitCode: 1, Stderr: "wg-quick: `wg1' is not a WireGuard interface"}, nil, OutcomeWarning, 1, "wg-quick: `wg1' is not a WireGuard interface"},
		{"failure", xexec.Result{ExitCode: 4, Stderr: "RTNETLINK answers: Operation not permitted"}, nil, OutcomeError, 4, "RTNETLINK answers: Operation not permitted"},
		{"not found", xexec.Result{ExitCode: xexec.ExitNotFound}, errors.New("exec: not found"), OutcomeError, 2, "exec: not found"},
		{"timeout", xexec.Result{ExitCode: xexec.ExitUnexpected}, xexec.ErrTimeout, OutcomeError, 3, xexec.ErrTimeout.Error()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Classify(tc.res, tc.err)
			if out.Status != tc.status || out.Code != tc.code {
				t.Fatalf("Classify = %+v, want status %s code %d", out, tc.status, tc.code)
			}
			if out.Stderr != tc.stderrIs {
				t.Fatalf("stderr = %q, want %q", out.Stderr, tc.stderrIs)
			}
		})
	}
}

func TestOutcomeErr(t *testing.T) {
	if err := (Outcome{Status: OutcomeWarning, Code: 1}).Err("wg-quick", "down failed"); err != nil {
		t.Fatalf("warning must not be an error: %v", err)
	}
	err := (Outcome{Status: OutcomeError, Code: 5, Stderr: "boom"}).Err("wg-quick", "up failed")
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperrors.Error, got %T", err)
	}
	if appErr.Kind != apperrors.KindExternalTool || appErr.ExitCode != 5 || appErr.Stderr != "boom" {
		t.Fatalf("unexpected error %+v", appErr)
	}
}

func TestWgQuickInvocation(t *testing.T) {
	stub := (&xexectest.Stub{}).On("wg-quick down", xexectest.Response{Result: xexec.Result{ExitCode: 1}})
	w := NewWgQuick("wg-quick", "/etc/wireguard/", stub, nil)

	if out := w.Up(context.Background(), "wg3"); out.Status != OutcomeSuccess {
		t.Fatalf("Up = %+v", out)
	}
	if out := w.Down(context.Background(), "wg3"); out.Status != OutcomeWarning || out.Code != 1 {
		t.Fatalf("Down = %+v", out)
	}

	lines := stub.Lines()
	want := []string{"wg-quick up /etc/wireguard/wg3.conf", "wg-quick down /etc/wireguard/wg3.conf"}
	if len(lines) != 2 || lines[0] != want[0] || lines[1] != want[1] {
		t.Fatalf("calls = %v, want %v", lines, want)
	}
}

func TestWgQuickRejectsBadNameWithoutRunning(t *testing.T) {
	stub := &xexectest.Stub{}
	w := NewWgQuick("wg-quick", "", stub, nil)
	if out := w.Up(context.Background(), "eth0; reboot"); out.Status != OutcomeError {
		t.Fatalf("expected error outcome, got %+v", out)
	}
	if len(stub.Calls()) != 0 {
		t.Fatalf("runner must not be invoked: %v", stub.Lines())
	}
}
