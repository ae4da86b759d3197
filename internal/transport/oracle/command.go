package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/shlex"

	"github.com/kailas-cloud/wsdlab/internal/metrics"
)

// Command runs an external tool as `<argv...> <a> <b>` and reads the first
// float from its standard output.
type Command struct {
	argv    []string
	timeout time.Duration
}

// NewCommand splits cmdline with shell quoting rules.
func NewCommand(cmdline string, timeout time.Duration) (*Command, error) {
	argv, err := shlex.Split(cmdline)
	if err != nil {
		return nil, fmt.Errorf("split oracle command: %w", err)
	}
	if len(argv) == 0 {
		return nil, errors.New("oracle command is empty")
	}
	return &Command{argv: argv, timeout: timeout}, nil
}

// Name returns the executable name.
func (c *Command) Name() string { return "cmd:" + c.argv[0] }

// Similarity runs the tool under the configured timeout.
func (c *Command) Similarity(ctx context.Context, a, b string) (score float64, err error) {
	start := time.Now()
	defer func() { metrics.ObserveExternal("oracle_cmd", time.Since(start).Seconds(), err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append(append([]string{}, c.argv[1:]...), a, b)
	cmd := exec.CommandContext(ctx, c.argv[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("run %s: %w", c.argv[0], ctx.Err())
		}
		return 0, fmt.Errorf("run %s: %w: %s", c.argv[0], err, bytes.TrimSpace(stderr.Bytes()))
	}
	return parseScore(stdout.Bytes())
}

// Check verifies the executable can be found.
func (c *Command) Check(context.Context) error {
	if _, err := exec.LookPath(c.argv[0]); err != nil {
		return fmt.Errorf("not found: %w", err)
	}
	return nil
}
