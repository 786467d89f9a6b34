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

package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/strslice"
	"github.com/pkg/errors"

	"github.com/thediveo/anchorage/engineclient"
)

// State is a Coordinator's position in the container startup state machine.
type State int

// The states a Coordinator moves through while bringing up its container.
const (
	NotStarted State = iota // no start attempted yet.
	Configured              // one-time configuration has been applied.
	Starting                // a start attempt is in progress.
	Running                 // the container is up.
	Failed                  // the attempt budget is spent, or configuring failed.
)

var statenames = map[State]string{
	NotStarted: "NotStarted",
	Configured: "Configured",
	Starting:   "Starting",
	Running:    "Running",
	Failed:     "Failed",
}

func (s State) String() string { return statenames[s] }

// DefaultAttempts is the default total number of start attempts before a
// Coordinator gives up.
const DefaultAttempts = 3

// ContainerSpec describes the container a Coordinator is to bring up.
type ContainerSpec struct {
	Image  string            // image reference to create the container from.
	Cmd    []string          // command to run inside the container.
	Name   string            // optional container name.
	Labels map[string]string // optional container labels.
}

// Hooks are the caller-supplied callbacks a Coordinator drives during
// container startup.
type Hooks struct {
	// Configure runs exactly once per Coordinator, before the first start
	// attempt; it carries the side effects that must not be repeated during
	// retried attempts. A Configure failure is not retried.
	Configure func(ctx context.Context) error
	// Starting runs on every start attempt after the attempt's container has
	// been created and started, receiving the freshly inspected container
	// details. When Starting fails, the attempt fails and gets retried
	// within the attempt budget.
	Starting func(ctx context.Context, details types.ContainerJSON) error
}

// StartupError is the terminal failure after a Coordinator has spent its
// whole attempt budget; it carries the last attempt's underlying cause.
type StartupError struct {
	Attempts int   // number of attempts made.
	Err      error // the last attempt's failure.
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("container startup failed after %d attempt(s): %s", e.Attempts, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// Coordinator brings up a single container, retrying transiently failing
// start attempts while guaranteeing its one-time configure hook to run
// exactly once. Each container gets its own Coordinator; a Coordinator must
// not be used for concurrent Start calls, but separate Coordinators are
// fully independent of each other.
type Coordinator struct {
	moby      engineclient.RuntimeAPIClient
	hooks     Hooks
	buggeroff backoff.BackOff

	state       State
	configured  bool // one-time configuration has been applied; never resets.
	attempts    int
	containerID string
}

// New returns a new Coordinator using the specified engine client and
// caller-supplied hooks. Without further options, a Coordinator makes up to
// DefaultAttempts start attempts in brisk succession.
func New(moby engineclient.RuntimeAPIClient, hooks Hooks, opts ...NewOption) *Coordinator {
	c := &Coordinator{
		moby:  moby,
		hooks: hooks,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.buggeroff == nil {
		c.buggeroff = backoff.WithMaxRetries(
			backoff.NewConstantBackOff(500*time.Millisecond), DefaultAttempts-1)
	}
	return c
}

// NewOption represents options to New when creating new Coordinators.
type NewOption func(*Coordinator)

// WithBackOff sets the backoff controlling how often and at which intervals
// failed start attempts get retried.
func WithBackOff(buggeroff backoff.BackOff) NewOption {
	return func(c *Coordinator) {
		c.buggeroff = buggeroff
	}
}

// State returns the Coordinator's current startup state.
func (c *Coordinator) State() State { return c.state }

// Attempts returns the number of start attempts made so far.
func (c *Coordinator) Attempts() int { return c.attempts }

// ContainerID returns the ID of the container brought up by a successful
// Start, and otherwise "".
func (c *Coordinator) ContainerID() string { return c.containerID }

// Start brings up the container described by the specified spec: it first
// applies the one-time configuration (unless already applied), then attempts
// to create and start the container, invoking the starting hook with the
// inspected container details on every attempt. Transiently failing attempts
// get retried within the attempt budget; an exhausted budget fails with a
// StartupError carrying the last attempt's cause. On success, the container
// is up and Start returns its ID.
func (c *Coordinator) Start(ctx context.Context, spec ContainerSpec) (string, error) {
	if !c.configured {
		if c.hooks.Configure != nil {
			if err := c.hooks.Configure(ctx); err != nil {
				c.state = Failed
				return "", errors.Wrap(err, "container configuration failed")
			}
		}
		c.configured = true
	}
	c.state = Configured
	c.buggeroff.Reset()
	err := backoff.Retry(func() error {
		c.attempts++
		c.state = Starting
		id, err := c.attempt(ctx, spec)
		if err != nil {
			return err
		}
		c.containerID = id
		return nil
	}, backoff.WithContext(c.buggeroff, ctx))
	if err != nil {
		c.state = Failed
		return "", &StartupError{Attempts: c.attempts, Err: err}
	}
	c.state = Running
	return c.containerID, nil
}

// attempt makes a single start attempt: create, start, inspect, and announce
// via the starting hook. A failed attempt's container is scrapped so that
// the next attempt starts from a clean slate.
func (c *Coordinator) attempt(ctx context.Context, spec ContainerSpec) (string, error) {
	created, err := c.moby.ContainerCreate(ctx, &container.Config{
		Image:  spec.Image,
		Cmd:    strslice.StrSlice(spec.Cmd),
		Labels: spec.Labels,
	}, nil, nil, nil, spec.Name)
	if err != nil {
		return "", errors.Wrapf(err, "cannot create container from image %q", spec.Image)
	}
	id := created.ID
	if err := c.moby.ContainerStart(ctx, id, types.ContainerStartOptions{}); err != nil {
		c.scrap(id)
		return "", errors.Wrapf(err, "cannot start container %s", id)
	}
	if c.hooks.Starting != nil {
		details, err := c.moby.ContainerInspect(ctx, id)
		if err != nil {
			c.scrap(id)
			return "", errors.Wrapf(err, "cannot inspect starting container %s", id)
		}
		if err := c.hooks.Starting(ctx, details); err != nil {
			c.scrap(id)
			return "", errors.Wrap(err, "starting hook failed")
		}
	}
	return id, nil
}

// scrap force-removes a failed attempt's container, best-effort. The removal
// must proceed even when the caller's context already got cancelled.
func (c *Coordinator) scrap(id string) {
	_ = c.moby.ContainerRemove(context.Background(), id,
		types.ContainerRemoveOptions{Force: true})
}
