package suite

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/signalnine/cyclebench/benchmark"
	"github.com/signalnine/cyclebench/internal/config"
	"github.com/signalnine/cyclebench/internal/docker"
)

// ContainerRunner starts a container and waits for it. docker.RunContainer in
// production; tests substitute a fake.
type ContainerRunner func(ctx context.Context, opts *docker.RunOpts) (*docker.RunResult, error)

type Builder struct {
	Containers ContainerRunner
	Options    []benchmark.Option
}

func NewBuilder(opts ...benchmark.Option) *Builder {
	return &Builder{Containers: docker.RunContainer, Options: opts}
}

// Build registers every configured test on a new runner, in file order.
func (b *Builder) Build(cfg *config.Config, tests []config.Test) (*benchmark.Runner, error) {
	r := benchmark.New(cfg.Name, b.Options...)
	for i := range tests {
		fn, err := b.TestFunc(&tests[i], cfg.Env)
		if err != nil {
			return nil, err
		}
		r.Add(tests[i].Name, fn)
	}
	return r, nil
}

// TestFunc turns one configured test into the function the runner times.
// suiteEnv is applied first, then the test's own env.
func (b *Builder) TestFunc(t *config.Test, suiteEnv map[string]string) (benchmark.TestFunc, error) {
	env := mergeEnv(suiteEnv, t.Env)
	switch t.Kind {
	case config.KindSleep:
		return sleepTest(t.Duration.Std()), nil
	case config.KindCommand:
		return commandTest(t.Command, env), nil
	case config.KindContainer:
		return b.containerTest(t.Image, t.Command, env), nil
	default:
		return nil, fmt.Errorf("test %q: unknown kind %q", t.Name, t.Kind)
	}
}

func sleepTest(d time.Duration) benchmark.TestFunc {
	return func(ctx context.Context) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// commandWaitDelay bounds how long a cancelled command may keep its output
// pipes open after the kill.
const commandWaitDelay = 2 * time.Second

func commandTest(command string, env map[string]string) benchmark.TestFunc {
	return func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
		killGroupOnCancel(cmd)
		cmd.WaitDelay = commandWaitDelay
		out, err := cmd.CombinedOutput()
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", command, ctxErr)
		}
		return fmt.Errorf("%s: %s: %w", command, strings.TrimSpace(string(out)), err)
	}
}

func (b *Builder) containerTest(image, command string, env map[string]string) benchmark.TestFunc {
	var cmd []string
	if command != "" {
		cmd = []string{"sh", "-c", command}
	}
	return func(ctx context.Context) error {
		res, err := b.Containers(ctx, &docker.RunOpts{
			Image:   image,
			Command: cmd,
			Env:     env,
		})
		if err != nil {
			return err
		}
		return ExitError(image, res)
	}
}

// ExitError reports a container that did not exit cleanly.
func ExitError(image string, res *docker.RunResult) error {
	switch {
	case res.TimedOut:
		return fmt.Errorf("container %s timed out after %s", image, res.Duration.Round(time.Millisecond))
	case res.ExitCode != 0:
		return fmt.Errorf("container %s exited with code %d: %s", image, res.ExitCode, strings.TrimSpace(res.Logs))
	default:
		return nil
	}
}

func mergeEnv(layers ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}
