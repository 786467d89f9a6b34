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

package mockingmoby

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"golang.org/x/exp/slices"
)

// ContainerCreate creates a new mocked container from a locally present
// image.
func (mm *MockingMoby) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error) {
	if err := isCtxCancelled(ctx); err != nil {
		return container.CreateResponse{}, err
	}
	if err := callHook(ctx, ContainerCreatePre); err != nil {
		return container.CreateResponse{}, err
	}
	mm.mux.RLock()
	present := slices.Contains(mm.images, config.Image)
	mm.mux.RUnlock()
	if !present {
		return container.CreateResponse{}, errdefs.NotFound(fmt.Errorf("no such image %q", config.Image))
	}
	id, name := mm.nextID(containerName)
	mm.AddContainer(MockedContainer{
		ID:     id,
		Name:   name,
		Image:  config.Image,
		Cmd:    config.Cmd,
		Status: MockedCreated,
	})
	return container.CreateResponse{ID: id}, nil
}

// ContainerStart starts a mocked container.
func (mm *MockingMoby) ContainerStart(ctx context.Context, nameorid string, options types.ContainerStartOptions) error {
	if err := isCtxCancelled(ctx); err != nil {
		return err
	}
	if err := callHook(ctx, ContainerStartPre); err != nil {
		return err
	}
	c, ok := mm.lookup(nameorid)
	if !ok {
		return errdefs.NotFound(fmt.Errorf("no such container %q", nameorid))
	}
	mm.mux.Lock()
	defer mm.mux.Unlock()
	c.Status = MockedRunning
	c.StartedAt = time.Now().UTC().Format(time.RFC3339Nano)
	return nil
}

// ContainerWait immediately runs a mocked container to completion, reporting
// a zero exit status.
func (mm *MockingMoby) ContainerWait(ctx context.Context, nameorid string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	finished := make(chan container.WaitResponse, 1)
	failed := make(chan error, 1)
	if err := isCtxCancelled(ctx); err != nil {
		failed <- err
		return finished, failed
	}
	c, ok := mm.lookup(nameorid)
	if !ok {
		failed <- errdefs.NotFound(fmt.Errorf("no such container %q", nameorid))
		return finished, failed
	}
	mm.mux.Lock()
	c.Status = MockedExited
	c.FinishedAt = time.Now().UTC().Format(time.RFC3339Nano)
	mm.mux.Unlock()
	finished <- container.WaitResponse{StatusCode: 0}
	return finished, failed
}

// ContainerLogs returns the canned stdout of a mocked container (see
// ProvideOutput), in the engine's multiplexed log stream framing.
func (mm *MockingMoby) ContainerLogs(ctx context.Context, nameorid string, options types.ContainerLogsOptions) (io.ReadCloser, error) {
	if err := isCtxCancelled(ctx); err != nil {
		return nil, err
	}
	c, ok := mm.lookup(nameorid)
	if !ok {
		return nil, errdefs.NotFound(fmt.Errorf("no such container %q", nameorid))
	}
	mm.mux.RLock()
	output := mm.outputs[c.Image]
	mm.mux.RUnlock()
	var framed bytes.Buffer
	if _, err := stdcopy.NewStdWriter(&framed, stdcopy.Stdout).Write([]byte(output)); err != nil {
		return nil, err
	}
	return io.NopCloser(&framed), nil
}

// ContainerInspect returns details about a particular mocked container.
func (mm *MockingMoby) ContainerInspect(ctx context.Context, nameorid string) (types.ContainerJSON, error) {
	if err := isCtxCancelled(ctx); err != nil {
		return types.ContainerJSON{}, err
	}
	if err := callHook(ctx, ContainerInspectPre); err != nil {
		return types.ContainerJSON{}, err
	}
	c, ok := mm.lookup(nameorid)
	if !ok {
		return types.ContainerJSON{}, errdefs.NotFound(fmt.Errorf("no such container %q", nameorid))
	}
	mm.mux.RLock()
	defer mm.mux.RUnlock()
	return types.ContainerJSON{
		ContainerJSONBase: &types.ContainerJSONBase{
			ID:   c.ID,
			Name: "/" + c.Name,
			State: &types.ContainerState{
				Status:     MockedStatus[c.Status],
				Running:    c.Status == MockedRunning || c.Status == MockedPaused,
				Paused:     c.Status == MockedPaused,
				StartedAt:  c.StartedAt,
				FinishedAt: c.FinishedAt,
			},
		},
		Config: &container.Config{
			Image: c.Image,
			Cmd:   c.Cmd,
		},
	}, nil
}

// ContainerRemove removes a mocked container.
func (mm *MockingMoby) ContainerRemove(ctx context.Context, nameorid string, options types.ContainerRemoveOptions) error {
	if err := isCtxCancelled(ctx); err != nil {
		return err
	}
	if err := callHook(ctx, ContainerRemovePre); err != nil {
		return err
	}
	c, ok := mm.lookup(nameorid)
	if !ok {
		return errdefs.NotFound(fmt.Errorf("no such container %q", nameorid))
	}
	mm.mux.Lock()
	defer mm.mux.Unlock()
	delete(mm.containers, c.ID)
	delete(mm.names, c.Name)
	return nil
}
