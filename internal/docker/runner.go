package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
	"github.com/sirupsen/logrus"
)

// ExitTimedOut is reported when the container had to be killed.
const ExitTimedOut = 124

type RunOpts struct {
	Image   string
	Command []string
	Env     map[string]string
	// Timeout bounds the wait for the container to exit. Zero waits as long
	// as ctx allows.
	Timeout time.Duration
}

type RunResult struct {
	ExitCode int
	TimedOut bool
	Duration time.Duration
	// Logs holds the tail of the container output.
	Logs string
}

// RunContainer creates a labelled container, starts it, waits for it to exit
// and removes it.
func RunContainer(ctx context.Context, opts *RunOpts) (*RunResult, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	defer cli.Close()

	envSlice := make([]string, 0, len(opts.Env))
	for k, v := range opts.Env {
		envSlice = append(envSlice, k+"="+v)
	}

	initTrue := true
	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config: &container.Config{
			Image:  opts.Image,
			Cmd:    opts.Command,
			Env:    envSlice,
			Labels: map[string]string{"cyclebench": "true"},
		},
		HostConfig: &container.HostConfig{Init: &initTrue},
	})
	if err != nil {
		return nil, fmt.Errorf("creating container: %w", err)
	}
	containerID := createResp.ID
	log := logrus.WithFields(logrus.Fields{"image": opts.Image, "container": containerID})
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	start := time.Now()
	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("starting container: %w", err)
	}

	waitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	waitResult := cli.ContainerWait(waitCtx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-waitResult.Error:
			if err != nil {
				cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
				if ctx.Err() != nil {
					log.WithError(ctx.Err()).Info("Run cancelled, container killed")
					return nil, ctx.Err()
				}
				log.WithError(err).Warn("Container did not exit in time, killed")
				return &RunResult{
					ExitCode: ExitTimedOut,
					TimedOut: true,
					Duration: time.Since(start),
					Logs:     containerLogs(cli, containerID),
				}, nil
			}
			// nil error means no error on this channel; wait for result
		case status := <-waitResult.Result:
			res := &RunResult{
				ExitCode: int(status.StatusCode),
				Duration: time.Since(start),
			}
			if res.ExitCode != 0 {
				res.Logs = containerLogs(cli, containerID)
			}
			return res, nil
		}
	}
}

func containerLogs(cli *client.Client, containerID string) string {
	logReader, _ := cli.ContainerLogs(context.Background(), containerID, client.ContainerLogsOptions{ShowStdout: true, ShowStderr: true, Tail: "100"})
	if logReader == nil {
		return ""
	}
	defer logReader.Close()
	return demuxLogs(logReader)
}

// demuxLogs strips the stream headers docker puts on non-TTY output and
// interleaves stdout and stderr in arrival order.
func demuxLogs(r io.Reader) string {
	var buf bytes.Buffer
	stdcopy.StdCopy(&buf, &buf, r)
	return buf.String()
}
