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
	"context"
	"fmt"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
)

// MockingMoby is a mock Docker engine client implementing only the image,
// container, and system API methods needed for provisioning throwaway
// containers. All other service API methods will panic when tried.
type MockingMoby struct {
	client.ContainerAPIClient
	client.ImageAPIClient
	client.SystemAPIClient

	mux        sync.RWMutex
	containers map[string]*MockedContainer // mocked containers by ID.
	names      map[string]string           // maps names to IDs.
	images     []string                    // image references present in the mocked engine.
	pullable   map[string]bool             // image references the mocked registry serves.
	outputs    map[string]string           // canned container stdout by image reference.
	version    string                      // engine version to report.
	pingErr    error                       // when non-nil, the mocked engine is "gone".
	serial     int                         // container ID sequence.
}

// Ensure that all needed service API methods have been implemented.
var (
	_ client.ContainerAPIClient = (*MockingMoby)(nil)
	_ client.ImageAPIClient     = (*MockingMoby)(nil)
	_ client.SystemAPIClient    = (*MockingMoby)(nil)
)

// MockedVersion is the engine version a fresh MockingMoby reports.
const MockedVersion = "24.0.7"

// NewMockingMoby returns a new instance of a mock Docker engine client.
func NewMockingMoby() *MockingMoby {
	return &MockingMoby{
		containers: map[string]*MockedContainer{},
		names:      map[string]string{},
		pullable:   map[string]bool{},
		outputs:    map[string]string{},
		version:    MockedVersion,
	}
}

// NegotiateAPIVersion is a mock no-op.
func (mm *MockingMoby) NegotiateAPIVersion(ctx context.Context) {}

// DaemonHost returns the host address used by the client.
func (mm *MockingMoby) DaemonHost() string { return "mock://mocked" }

// Close closes the mock client, releasing its internal resources.
func (mm *MockingMoby) Close() error { return nil }

// Ping either succeeds, or fails with the error set using SetPingError when
// the mocked engine is supposed to have gone away.
func (mm *MockingMoby) Ping(ctx context.Context) (types.Ping, error) {
	if err := isCtxCancelled(ctx); err != nil {
		return types.Ping{}, err
	}
	if err := callHook(ctx, PingPre); err != nil {
		return types.Ping{}, err
	}
	mm.mux.RLock()
	defer mm.mux.RUnlock()
	if mm.pingErr != nil {
		return types.Ping{}, mm.pingErr
	}
	return types.Ping{APIVersion: "1.43"}, nil
}

// ServerVersion reports the mocked engine's version, see also SetVersion.
func (mm *MockingMoby) ServerVersion(ctx context.Context) (types.Version, error) {
	if err := isCtxCancelled(ctx); err != nil {
		return types.Version{}, err
	}
	mm.mux.RLock()
	defer mm.mux.RUnlock()
	return types.Version{Version: mm.version}, nil
}

// SetVersion changes the engine version the mocked engine reports.
func (mm *MockingMoby) SetVersion(version string) {
	mm.mux.Lock()
	defer mm.mux.Unlock()
	mm.version = version
}

// SetPingError makes the mocked engine appear to have gone away; a nil error
// brings it back to live.
func (mm *MockingMoby) SetPingError(err error) {
	mm.mux.Lock()
	defer mm.mux.Unlock()
	mm.pingErr = err
}

// AddContainer adds a mocked container.
func (mm *MockingMoby) AddContainer(c MockedContainer) {
	mm.mux.Lock()
	defer mm.mux.Unlock()
	cntr := c
	mm.containers[c.ID] = &cntr
	mm.names[c.Name] = c.ID
}

// Container returns the mocked container identified either by ID or name,
// for test assertions.
func (mm *MockingMoby) Container(nameorid string) (MockedContainer, bool) {
	c, ok := mm.lookup(nameorid)
	if !ok {
		return MockedContainer{}, false
	}
	return *c, true
}

// ContainerCount returns the number of mocked containers currently present,
// for test assertions about throwaway container cleanup.
func (mm *MockingMoby) ContainerCount() int {
	mm.mux.RLock()
	defer mm.mux.RUnlock()
	return len(mm.containers)
}

// lookup returns a mocked container identified either by ID or name. If not
// found, returns false.
func (mm *MockingMoby) lookup(nameorid string) (*MockedContainer, bool) {
	mm.mux.RLock()
	defer mm.mux.RUnlock()
	c, ok := mm.containers[nameorid]
	if !ok {
		if nameorid, ok = mm.names[nameorid]; ok {
			c, ok = mm.containers[nameorid]
		}
	}
	return c, ok
}

// nextID hands out the next unique mocked container ID and name (unless the
// caller supplied its own name).
func (mm *MockingMoby) nextID(name string) (string, string) {
	mm.mux.Lock()
	defer mm.mux.Unlock()
	mm.serial++
	id := fmt.Sprintf("mm%010d", mm.serial)
	if name == "" {
		name = fmt.Sprintf("mocked_moby_%d", mm.serial)
	}
	return id, name
}

// isCtxCancelled returns an error if the specified Context is done, either
// having been cancelled or reached its deadline. Otherwise, returns nil.
func isCtxCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
