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

// Names of the well-known environment variables carrying an explicit Docker
// engine endpoint configuration.
const (
	EnvHost      = "DOCKER_HOST"
	EnvTLSVerify = "DOCKER_TLS_VERIFY"
	EnvCertPath  = "DOCKER_CERT_PATH"
)

// EnvStrategy resolves the engine endpoint from an explicit DOCKER_HOST
// environment configuration, together with the optional DOCKER_TLS_VERIFY
// and DOCKER_CERT_PATH TLS settings. As explicit configuration, this
// strategy heads the default chain so it always wins over auto-detection.
type EnvStrategy struct {
	// Getenv looks up a single environment variable, defaulting to os.Getenv
	// when nil. Unit tests inject their own environments here.
	Getenv func(name string) string
}

var _ Strategy = (*EnvStrategy)(nil)

// Resolve the endpoint from the environment; unavailable unless DOCKER_HOST
// is set (and non-empty).
func (s *EnvStrategy) Resolve() (*Config, error) {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	host := getenv(EnvHost)
	if host == "" {
		return nil, errors.Wrapf(ErrUnavailable, "%s not set", EnvHost)
	}
	cfg, err := Parse(host)
	if err != nil {
		return nil, err
	}
	cfg.TLSVerify = getenv(EnvTLSVerify) != ""
	cfg.CertPath = getenv(EnvCertPath)
	return cfg, nil
}

func (s *EnvStrategy) String() string {
	return "explicit " + EnvHost + " environment configuration"
}
