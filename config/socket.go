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
	"os"

	"github.com/pkg/errors"
)

// DefaultSocketPath is the well-known path of the local Docker engine API
// socket.
const DefaultSocketPath = "/var/run/docker.sock"

// UnixSocketStrategy resolves the engine endpoint to the local default API
// socket, if that socket actually exists. It is the chain's last resort.
type UnixSocketStrategy struct {
	// Path of the API socket, defaulting to DefaultSocketPath when zero.
	Path string
}

var _ Strategy = (*UnixSocketStrategy)(nil)

// Resolve the endpoint to the local API socket; unavailable when there is no
// such socket.
func (s *UnixSocketStrategy) Resolve() (*Config, error) {
	path := s.Path
	if path == "" {
		path = DefaultSocketPath
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "no local engine socket at %s", path)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return nil, errors.Wrapf(ErrUnavailable, "%s is not a socket", path)
	}
	return &Config{
		Scheme: "unix",
		RawURI: "unix://" + path,
	}, nil
}

func (s *UnixSocketStrategy) String() string {
	return "local default engine socket"
}
