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
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// MachineBinary is the name of the docker-machine provisioning tool binary.
const MachineBinary = "docker-machine"

// MachineStrategy resolves the engine endpoint from a docker-machine
// provisioned VM by asking the docker-machine tool for the environment
// export of the first machine reported to be running.
type MachineStrategy struct {
	// Machine optionally names the machine to use instead of picking the
	// first running one.
	Machine string
	// Run executes the docker-machine tool with the specified arguments and
	// returns its standard output. Defaults to executing the real tool; unit
	// tests inject their own fake here.
	Run func(args ...string) (string, error)
}

var _ Strategy = (*MachineStrategy)(nil)

// Resolve the endpoint by shelling out to docker-machine; unavailable when
// the tool is not installed or no machine is currently running.
func (s *MachineStrategy) Resolve() (*Config, error) {
	run := s.Run
	if run == nil {
		if _, err := exec.LookPath(MachineBinary); err != nil {
			return nil, errors.Wrapf(ErrUnavailable, "%s not installed", MachineBinary)
		}
		run = runMachine
	}
	machine := s.Machine
	if machine == "" {
		out, err := run("ls", "-q", "--filter", "state=Running")
		if err != nil {
			return nil, errors.Wrapf(ErrUnavailable, "cannot list machines: %s", err)
		}
		machines := strings.Fields(out)
		if len(machines) == 0 {
			return nil, errors.Wrap(ErrUnavailable, "no running machine")
		}
		machine = machines[0]
	}
	out, err := run("env", "--shell", "sh", machine)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "cannot get environment of machine %q: %s", machine, err)
	}
	env := parseMachineEnv(out)
	host := env[EnvHost]
	if host == "" {
		return nil, errors.Wrapf(ErrUnavailable, "machine %q exports no %s", machine, EnvHost)
	}
	cfg, err := Parse(host)
	if err != nil {
		return nil, err
	}
	cfg.TLSVerify = env[EnvTLSVerify] != ""
	cfg.CertPath = env[EnvCertPath]
	return cfg, nil
}

func (s *MachineStrategy) String() string {
	return "docker-machine provisioned engine"
}

// runMachine executes the real docker-machine tool.
func runMachine(args ...string) (string, error) {
	out, err := exec.Command(MachineBinary, args...).Output()
	return string(out), err
}

// parseMachineEnv extracts the variables from the sh-style "export
// NAME=value" lines emitted by "docker-machine env --shell sh"; values may
// optionally be double-quoted.
func parseMachineEnv(out string) map[string]string {
	env := map[string]string{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		exported, ok := strings.CutPrefix(line, "export ")
		if !ok {
			continue
		}
		name, value, ok := strings.Cut(exported, "=")
		if !ok {
			continue
		}
		env[strings.TrimSpace(name)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return env
}
