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

package engineclient

import (
	"context"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
)

// RuntimeAPIClient is a Docker engine client offering the container, image,
// and system APIs as needed for provisioning throwaway containers. For
// production, Docker's client.Client is a compatible implementation, for
// unit testing our very own mockingmoby.MockingMoby.
type RuntimeAPIClient interface {
	client.ContainerAPIClient
	client.ImageAPIClient
	client.SystemAPIClient
	ServerVersion(ctx context.Context) (types.Version, error)
	DaemonHost() string
	Close() error
}
