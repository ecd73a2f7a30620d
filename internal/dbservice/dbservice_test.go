package dbservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []call
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	key := name + " " + strings.Join(args, " ")
	return f.outputs[key], f.errs[key]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnsure_AlreadyRunning(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"systemctl is-active mysql": "active\n"}}
	mgr, err := NewManager("systemd", runner)
	if err != nil {
		t.Fatal(err)
	}

	if err := NewChecker(mgr, "mysql", discardLogger()).Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("got %d commands, want 1 (status only): %+v", len(runner.calls), runner.calls)
	}
}

func TestEnsure_StartsStoppedService(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{"systemctl is-active mysql": "inactive\n"},
		errs:    map[string]error{"systemctl is-active mysql": errors.New("exit status 3")},
	}
	mgr, _ := NewManager("systemd", runner)

	if err := NewChecker(mgr, "mysql", discardLogger()).Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("got %d commands, want 2: %+v", len(runner.calls), runner.calls)
	}
	if got := runner.calls[1]; got.name != "systemctl" || strings.Join(got.args, " ") != "start mysql" {
		t.Errorf("second command = %s %v, want systemctl start mysql", got.name, got.args)
	}
}

func TestEnsure_StartFailureIsNotRetried(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{
			"sc query MySQL80":  "STATE : 1 STOPPED",
			"net start MySQL80": "System error 5 has occurred.",
		},
		errs: map[string]error{"net start MySQL80": errors.New("exit status 2")},
	}
	mgr, _ := NewManager("windows", runner)

	err := NewChecker(mgr, "MySQL80", discardLogger()).Ensure(context.Background())
	if err == nil {
		t.Fatal("Ensure = nil, want error")
	}
	if !strings.Contains(err.Error(), "MySQL80") {
		t.Errorf("error %q does not name the service", err)
	}
	if len(runner.calls) != 2 {
		t.Errorf("got %d commands, want exactly 2 (status + one start): %+v", len(runner.calls), runner.calls)
	}
}

func TestEnsure_WindowsRunning(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"sc query MySQL80": "STATE : 4 RUNNING"}}
	mgr, _ := NewManager("windows", runner)
	if err := NewChecker(mgr, "MySQL80", discardLogger()).Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("got %d commands, want 1", len(runner.calls))
	}
}

func TestEnsure_NoManager(t *testing.T) {
	mgr, err := NewManager("none", nil)
	if err != nil {
		t.Fatal(err)
	}
	if mgr != nil {
		t.Fatalf("NewManager(none) = %v, want nil", mgr)
	}
	if err := NewChecker(mgr, "", discardLogger()).Ensure(context.Background()); err != nil {
		t.Errorf("Ensure without manager = %v, want nil", err)
	}
}

func TestNewManager_Unknown(t *testing.T) {
	if _, err := NewManager("launchd", nil); err == nil {
		t.Error("NewManager(launchd) = nil error, want error")
	}
}
