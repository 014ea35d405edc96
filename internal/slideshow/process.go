package slideshow

import (
	"log/slog"
	"os/exec"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// child owns one external viewer/player subprocess handle — the guard type
// spec.md's Design Notes call for in place of the source's explicit
// terminate/kill pairs: stop() is the single place that terminates the
// process; a background Wait started by startChild reaps it.
type child struct {
	cmd  *exec.Cmd
	wait chan error
	id   string // correlation id for log lines, since pid is reused by the OS
}

// startChild launches argv and returns a handle for waiting on or
// terminating it. Launch failures are the caller's responsibility to log
// and treat as "skip this item" per spec.md §7.
func startChild(argv []string) (*child, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	c := &child{cmd: cmd, wait: make(chan error, 1), id: uuid.NewString()}
	slog.Debug("subprocess started", "id", c.id, "pid", c.pid(), "argv", argv)
	go func() {
		c.wait <- cmd.Wait()
		close(c.wait)
	}()
	return c, nil
}

// done is closed (via a buffered error channel receive) once the process
// has exited, for use as one arm of a wait-any select alongside timers and
// the media-change event.
func (c *child) done() <-chan error {
	return c.wait
}

// pid returns the process id, for log correlation.
func (c *child) pid() int {
	if c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

// stop gracefully terminates the process (SIGTERM), waiting up to timeout
// before forcibly killing it (SIGKILL), and always reaps the child. Safe
// to call after the process has already exited.
func (c *child) stop(timeout time.Duration) {
	if c.cmd.Process != nil {
		if err := c.cmd.Process.Signal(syscall.SIGTERM); err != nil {
			slog.Debug("signal to subprocess failed", "id", c.id, "pid", c.pid(), "error", err)
		}
	}
	select {
	case <-c.wait:
		return
	case <-time.After(timeout):
	}
	if c.cmd.Process != nil {
		slog.Warn("subprocess did not exit before timeout, killing", "id", c.id, "pid", c.pid())
		if err := c.cmd.Process.Kill(); err != nil {
			slog.Debug("kill subprocess failed", "id", c.id, "pid", c.pid(), "error", err)
		}
	}
	<-c.wait
}
