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

package config

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrUnavailable signals that a particular resolution strategy is not
// applicable in the current environment, such as when a required environment
// variable is not set, a provisioning tool is not installed, or the default
// API socket does not exist. The chain recovers from ErrUnavailable by
// simply moving on to the next strategy.
var ErrUnavailable = errors.New("endpoint resolution strategy not applicable")

// ErrNoConfigFound signals that the whole strategy chain failed to resolve
// any valid Docker engine endpoint configuration. There is no recovery.
var ErrNoConfigFound = errors.New("no valid Docker engine endpoint configuration found")

// Strategy attempts to produce a valid engine endpoint configuration from a
// single source of information. Strategies must return errors satisfying
// errors.Is(err, ErrUnavailable) when their source is not applicable or not
// reachable in the current environment.
type Strategy interface {
	// Resolve the endpoint configuration from this strategy's source.
	Resolve() (*Config, error)
	// Describe this strategy to hoomans reading logs.
	fmt.Stringer
}

// DefaultStrategies returns the default resolution chain in its fixed
// priority order: explicit environment configuration, docker-machine
// detection, local default API socket.
func DefaultStrategies() []Strategy {
	return []Strategy{
		&EnvStrategy{},
		&MachineStrategy{},
		&UnixSocketStrategy{},
	}
}

// Discover tries the specified strategies in order and returns the endpoint
// configuration of the first strategy to succeed. Calling Discover without
// any strategies tries the default chain, see DefaultStrategies. When every
// strategy fails, Discover fails with ErrNoConfigFound.
func Discover(strategies ...Strategy) (*Config, error) {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	for _, strategy := range strategies {
		cfg, err := strategy.Resolve()
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				log.Debugf("%s: %s", strategy, err)
			} else {
				log.Warnf("%s failed: %s", strategy, err)
			}
			continue
		}
		log.Debugf("found Docker engine endpoint %s using %s", cfg, strategy)
		return cfg, nil
	}
	return nil, ErrNoConfigFound
}
