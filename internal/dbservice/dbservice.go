package dbservice

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes a command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

// Manager reports and starts a named OS service.
type Manager interface {
	Name() string
	Running(ctx context.Context, service string) bool
	Start(ctx context.Context, service string) error
}

// Systemd drives services through systemctl.
type Systemd struct {
	runner Runner
}

func (Systemd) Name() string { return "systemd" }

// Running is true only when systemctl reports the unit as active.
// is-active exits non-zero for inactive units, so the exit status is ignored.
func (s Systemd) Running(ctx context.Context, service string) bool {
	out, _ := s.runner.Run(ctx, "systemctl", "is-active", service)
	return strings.TrimSpace(out) == "active"
}

func (s Systemd) Start(ctx context.Context, service string) error {
	out, err := s.runner.Run(ctx, "systemctl", "start", service)
	if err != nil {
		return fmt.Errorf("systemctl start %s: %w: %s", service, err, strings.TrimSpace(out))
	}
	return nil
}

// Windows drives services through sc and net.
type Windows struct {
	runner Runner
}

func (Windows) Name() string { return "windows" }

func (w Windows) Running(ctx context.Context, service string) bool {
	out, _ := w.runner.Run(ctx, "sc", "query", service)
	return strings.Contains(out, "RUNNING")
}

func (w Windows) Start(ctx context.Context, service string) error {
	out, err := w.runner.Run(ctx, "net", "start", service)
	if err != nil {
		return fmt.Errorf("net start %s: %w: %s", service, err, strings.TrimSpace(out))
	}
	return nil
}

// NewManager returns the manager for kind, or nil for "none".
func NewManager(kind string, runner Runner) (Manager, error) {
	if runner == nil {
		runner = ExecRunner{}
	}
	switch kind {
	case "systemd":
		return Systemd{runner: runner}, nil
	case "windows":
		return Windows{runner: runner}, nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown service manager %q", kind)
	}
}

// Checker makes sure the database service is running before connecting.
type Checker struct {
	manager Manager
	service string
	logger  *slog.Logger
}

func NewChecker(manager Manager, service string, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{manager: manager, service: service, logger: logger}
}

// Ensure returns nil when the service is running or was started by the single
// start attempt. A failed start is returned as is and is not retried.
func (c *Checker) Ensure(ctx context.Context) error {
	if c.manager == nil {
		c.logger.Debug("service check skipped")
		return nil
	}

	log := c.logger.With("service", c.service, "manager", c.manager.Name())
	log.Info("checking database service status")
	if c.manager.Running(ctx, c.service) {
		log.Info("database service is already running")
		return nil
	}

	log.Warn("database service is not running, attempting to start")
	if err := c.manager.Start(ctx, c.service); err != nil {
		return fmt.Errorf("start service %s: %w", c.service, err)
	}
	log.Info("database service started")
	return nil
}
