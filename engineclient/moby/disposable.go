// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package moby

import (
	"bytes"
	"context"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/strslice"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/pkg/errors"

	"github.com/thediveo/anchorage/engineclient"
)

// DisposableRun creates a throwaway container from the specified image and
// command, runs it to completion, and returns its fully-buffered stdout. The
// throwaway container gets force-removed afterwards on a best-effort basis,
// whether or not the run succeeded.
func DisposableRun(ctx context.Context, moby engineclient.RuntimeAPIClient, image string, cmd ...string) (string, error) {
	created, err := moby.ContainerCreate(ctx, &container.Config{
		Image: image,
		Cmd:   strslice.StrSlice(cmd),
	}, nil, nil, nil, "")
	if err != nil {
		return "", errors.Wrapf(err, "cannot create throwaway container from image %q", image)
	}
	id := created.ID
	defer func() {
		// The removal must proceed even when the caller's context already
		// got cancelled.
		_ = moby.ContainerRemove(context.Background(), id,
			types.ContainerRemoveOptions{Force: true})
	}()
	if err := moby.ContainerStart(ctx, id, types.ContainerStartOptions{}); err != nil {
		return "", errors.Wrapf(err, "cannot start throwaway container %s", id)
	}
	finished, failed := moby.ContainerWait(ctx, id, container.WaitConditionNotRunning)
	select {
	case err := <-failed:
		return "", errors.Wrapf(err, "cannot wait for throwaway container %s", id)
	case <-finished:
	}
	logs, err := moby.ContainerLogs(ctx, id, types.ContainerLogsOptions{ShowStdout: true})
	if err != nil {
		return "", errors.Wrapf(err, "cannot read logs of throwaway container %s", id)
	}
	defer logs.Close()
	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, logs); err != nil {
		return "", errors.Wrapf(err, "garbled log stream of throwaway container %s", id)
	}
	return stdout.String(), nil
}
