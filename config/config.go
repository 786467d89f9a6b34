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
	"net/url"

	"github.com/pkg/errors"
)

// Config is a resolved Docker engine endpoint configuration. Configs are
// immutable once produced by a resolution strategy; the factory caches the
// first successfully resolved Config for the remaining process lifetime.
type Config struct {
	Scheme    string // endpoint URI scheme, such as "tcp" or "unix".
	Host      string // host part of the endpoint URI, if any.
	RawURI    string // complete endpoint URI, suitable for client construction.
	TLSVerify bool   // verify the engine's TLS certificate.
	CertPath  string // directory with TLS materials (ca/cert/key PEMs).
}

// Parse returns a new Config for the specified endpoint URI, deriving the
// scheme and host fields from it.
func Parse(endpoint string) (*Config, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid Docker engine endpoint %q", endpoint)
	}
	return &Config{
		Scheme: u.Scheme,
		Host:   u.Hostname(),
		RawURI: endpoint,
	}, nil
}

// HostIP returns the IP address (or name) of the host running the Docker
// engine this endpoint configuration points to: for http, https, and tcp
// endpoints this is the endpoint URI's host, for unix socket endpoints it is
// always "localhost". For any other scheme the engine host is unknown and
// HostIP returns "".
func (c *Config) HostIP() string {
	switch c.Scheme {
	case "http", "https", "tcp":
		return c.Host
	case "unix":
		return "localhost"
	}
	return ""
}

// String renders a short textual representation of this endpoint
// configuration to aid logging.
func (c *Config) String() string {
	if c.TLSVerify {
		return c.RawURI + " (TLS verified)"
	}
	return c.RawURI
}
