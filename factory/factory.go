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

package factory

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/thediveo/anchorage/config"
	"github.com/thediveo/anchorage/engineclient"
	"github.com/thediveo/anchorage/engineclient/moby"
)

// ErrUnreachable signals that the Docker engine didn't respond to a
// fail-fast liveness probe during client acquisition.
var ErrUnreachable = errors.New("Docker engine unreachable")

// DefaultPullTimeout is the default time budget for a reference image pull
// to make first progress during the disk space precondition check.
const DefaultPullTimeout = 5 * time.Minute

var (
	instancemux sync.Mutex
	instance    *Factory
)

// Instance returns the single process-wide Factory, lazily creating it on
// first call. Concurrent first callers observe exactly one Factory ever
// being constructed.
func Instance() *Factory {
	instancemux.Lock()
	defer instancemux.Unlock()
	if instance == nil {
		instance = New()
	}
	return instance
}

// Reset discards the process-wide Factory (if any), closing its engine
// client. Reset exists for test isolation; production code has no business
// calling it.
func Reset() {
	instancemux.Lock()
	defer instancemux.Unlock()
	if instance != nil {
		instance.close()
		instance = nil
	}
}

// Factory provides initialized and validated Docker engine clients. The
// endpoint configuration to use gets determined on first use and cached
// thereafter, as does the one-time precondition outcome. There is one live
// client per Factory; it would only ever be rebuilt if the cached endpoint
// configuration changed, which it never does within a process lifetime.
type Factory struct {
	mux            sync.Mutex // the whole client acquisition is one critical section.
	strategies     []config.Strategy
	newClient      func(cfg *config.Config) (engineclient.RuntimeAPIClient, error)
	refImage       string
	pullTimeout    time.Duration
	cfg            *config.Config
	client         engineclient.RuntimeAPIClient
	preconditioned bool
}

// New returns a new Factory. Most callers do not want their very own Factory
// and use the process-wide Instance instead; New primarily aids unit
// testing.
func New(opts ...NewOption) *Factory {
	f := &Factory{
		newClient:   moby.NewClient,
		refImage:    ReferenceImage,
		pullTimeout: DefaultPullTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewOption represents options to New when creating new Factories.
type NewOption func(*Factory)

// WithStrategies replaces the default endpoint resolution chain.
func WithStrategies(strategies ...config.Strategy) NewOption {
	return func(f *Factory) {
		f.strategies = strategies
	}
}

// WithPullTimeout sets the time budget for the reference image pull to make
// first progress during the disk space precondition check.
func WithPullTimeout(timeout time.Duration) NewOption {
	return func(f *Factory) {
		f.pullTimeout = timeout
	}
}

// WithReferenceImage replaces the default reference image used by the disk
// space precondition check.
func WithReferenceImage(ref string) NewOption {
	return func(f *Factory) {
		f.refImage = ref
	}
}

// WithNewClient replaces how the Factory constructs an engine client from
// the resolved endpoint configuration; unit tests inject their mock engines
// here.
func WithNewClient(newclient func(cfg *config.Config) (engineclient.RuntimeAPIClient, error)) NewOption {
	return func(f *Factory) {
		f.newClient = newclient
	}
}

// ClientOption represents options to Client when acquiring the engine
// client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	noPing bool
}

// WithoutPing skips the fail-fast liveness probe during this client
// acquisition.
func WithoutPing() ClientOption {
	return func(o *clientOptions) {
		o.noPing = true
	}
}

// Client returns the validated engine client. On first use it resolves the
// endpoint configuration through the strategy chain, caching the result for
// good, and constructs the client; the first successfully constructed
// client has to pass the one-time preconditions, see the package
// documentation. Unless WithoutPing is given, the engine is then pinged so
// acquisition fails fast with ErrUnreachable when the engine has gone away.
//
// Client's whole body is a single critical section: concurrent callers
// observe at most one endpoint resolution and at most one precondition run.
func (f *Factory) Client(ctx context.Context, opts ...ClientOption) (engineclient.RuntimeAPIClient, error) {
	var copts clientOptions
	for _, opt := range opts {
		opt(&copts)
	}
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.cfg == nil {
		cfg, err := config.Discover(f.strategies...)
		if err != nil {
			return nil, err
		}
		f.cfg = cfg
	}
	if f.client == nil {
		client, err := f.newClient(f.cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot construct engine client for %s", f.cfg)
		}
		f.client = client
	}
	if !f.preconditioned {
		if err := f.checkPreconditions(ctx, f.client); err != nil {
			return nil, err
		}
		f.preconditioned = true
	}
	if !copts.noPing {
		if _, err := f.client.Ping(ctx); err != nil {
			return nil, errors.Wrapf(ErrUnreachable, "%s: %s", f.cfg, err)
		}
	}
	return f.client, nil
}

// DockerHostIP returns the IP address (or name) of the host running the
// Docker engine, derived from the cached endpoint configuration. It returns
// "" as long as no endpoint has been resolved yet, as well as for endpoint
// schemes whose engine host cannot be known.
func (f *Factory) DockerHostIP() string {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.cfg == nil {
		return ""
	}
	return f.cfg.HostIP()
}

// close releases the Factory's engine client, if any.
func (f *Factory) close() {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.client != nil {
		f.client.Close()
		f.client = nil
	}
}
