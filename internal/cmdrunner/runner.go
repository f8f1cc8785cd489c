// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package cmdrunner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/choria-io/aurm/model"
)

// DefaultPath is the PATH every command runs with
const DefaultPath = "/usr/bin:/bin:/usr/sbin:/sbin:/usr/local/bin:/usr/local/sbin"

// passEnvironment are variables copied from our environment, makepkg and the helpers need them to find caches and the invoking user
var passEnvironment = []string{"HOME", "USER", "LOGNAME", "SUDO_USER"}

// CommandRunner executes system commands and captures their output
type CommandRunner struct {
	logger model.Logger
}

// NewCommandRunner creates a new CommandRunner instance with the provided logger
func NewCommandRunner(log model.Logger) (*CommandRunner, error) {
	return &CommandRunner{logger: log}, nil
}

// Environment is the environment a command runs with, extra entries are appended last so they override the defaults
func Environment(extra ...string) []string {
	env := []string{
		"PATH=" + DefaultPath,
		"LANG=C",
		"LC_ALL=C",
	}

	for _, k := range passEnvironment {
		v, ok := os.LookupEnv(k)
		if ok {
			env = append(env, k+"="+v)
		}
	}

	return append(env, extra...)
}

// ExecuteWithOptions runs a command without a shell, a non zero exit code is returned as exitCode and not as an error
func (c *CommandRunner) ExecuteWithOptions(ctx context.Context, opts model.ExtendedExecOptions) ([]byte, []byte, int, error) {
	if opts.Command == "" {
		return nil, nil, 0, errors.New("command not specified")
	}

	logOpts := []any{
		"command", shellquote.Join(append([]string{opts.Command}, opts.Args...)...),
	}
	if opts.Cwd != "" {
		logOpts = append(logOpts, "cwd", opts.Cwd)
	}
	if opts.Timeout > 0 {
		logOpts = append(logOpts, "timeout", opts.Timeout)
	}

	c.logger.Debug("Running command", logOpts...)

	toCtx := ctx
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		toCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(toCtx, opts.Command, opts.Args...)
	cmd.Env = Environment(opts.Environment...)
	cmd.WaitDelay = 10 * time.Second

	if opts.Cwd != "" {
		cmd.Dir = opts.Cwd
	} else {
		cmd.Dir = "/"
	}

	stdout := bytes.NewBuffer([]byte{})
	stderr := bytes.NewBuffer([]byte{})

	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	exitCode := cmd.ProcessState.ExitCode()

	c.logger.Debug("Command completed", "command", opts.Command, "exitcode", exitCode, "runtime", time.Since(start).Truncate(time.Millisecond))

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// exit codes >0 are results for the caller to interpret, not errors
		if exitCode > 0 {
			return stdout.Bytes(), stderr.Bytes(), exitCode, nil
		}

		return stdout.Bytes(), stderr.Bytes(), exitCode, err
	}

	if err != nil {
		return stdout.Bytes(), stderr.Bytes(), exitCode, err
	}

	return stdout.Bytes(), stderr.Bytes(), exitCode, nil
}

// Execute runs a command with the given arguments and returns stdout, stderr, exit code, and any error
func (c *CommandRunner) Execute(ctx context.Context, command string, args ...string) ([]byte, []byte, int, error) {
	return c.ExecuteWithOptions(ctx, model.ExtendedExecOptions{Command: command, Args: args})
}
