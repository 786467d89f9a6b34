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

// MockedContainerStatus is a compressed, only-essentials version of Docker's
// container states.
type MockedContainerStatus int

// The available states of a mocked container.
const (
	MockedCreated MockedContainerStatus = iota
	MockedRunning
	MockedPaused
	MockedExited
)

// MockedStatus maps the states of a mocked container to Docker's container
// status strings.
var MockedStatus = map[MockedContainerStatus]string{
	MockedCreated: "created",
	MockedRunning: "running",
	MockedPaused:  "paused",
	MockedExited:  "exited",
}

// MockedContainer is our very, very limited knowledge about a mocked
// container; it just stores the minimum of information we need in mocking
// our own unit tests.
type MockedContainer struct {
	ID         string                // unique identifier of container.
	Name       string                // name of container without any prefixing "/".
	Image      string                // image reference this container was created from.
	Cmd        []string              // command this container runs.
	Status     MockedContainerStatus // container status (without any thrills).
	StartedAt  string                // engine-formatted start timestamp, if any.
	FinishedAt string                // engine-formatted finish timestamp, if any.
}
