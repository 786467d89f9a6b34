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
	"path/filepath"

	"github.com/docker/docker/client"

	"github.com/thediveo/anchorage/config"
	"github.com/thediveo/anchorage/engineclient"
)

// NewClient returns a new Docker engine client for the specified endpoint
// configuration, negotiating the API version with the engine. TLS materials
// are picked up from the configuration's certificate path, using Docker's
// usual ca/cert/key PEM file layout.
func NewClient(cfg *config.Config) (engineclient.RuntimeAPIClient, error) {
	opts := []client.Opt{
		client.WithHost(cfg.RawURI),
		client.WithAPIVersionNegotiation(),
	}
	if cfg.CertPath != "" {
		opts = append(opts, client.WithTLSClientConfig(
			filepath.Join(cfg.CertPath, "ca.pem"),
			filepath.Join(cfg.CertPath, "cert.pem"),
			filepath.Join(cfg.CertPath, "key.pem")))
	}
	return client.NewClientWithOpts(opts...)
}
