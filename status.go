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

package anchorage

import (
	"time"

	"github.com/docker/docker/api/types"
)

// DockerTimestampZero is the special value the Docker engine reports for an
// "empty" timestamp, rather than null or an empty string.
const DockerTimestampZero = "0001-01-01T00:00:00Z"

// IsContainerRunning classifies an inspected container state as "running",
// optionally requiring the container to have been running for at least the
// specified minimum duration as of now. A zero minimumRunningDuration accepts
// any running container, however short-lived so far. A state whose started-at
// timestamp cannot be understood never qualifies as solidly running.
func IsContainerRunning(state *types.ContainerState, minimumRunningDuration time.Duration, now time.Time) bool {
	if state == nil || !state.Running {
		return false
	}
	if minimumRunningDuration == 0 {
		return true
	}
	startedAt, err := time.Parse(time.RFC3339Nano, state.StartedAt)
	if err != nil {
		return false
	}
	return startedAt.Before(now.Add(-minimumRunningDuration))
}

// IsContainerStopped classifies an inspected container state as "started, but
// now halted". Running as well as paused containers never classify as
// stopped; neither do containers that were never started in the first place:
// only when both the started-at and finished-at timestamps are non-empty did
// the container actually start and then finish.
func IsContainerStopped(state *types.ContainerState) bool {
	if state == nil || state.Running || state.Paused {
		return false
	}
	return !IsEmptyTimestamp(state.StartedAt) && !IsEmptyTimestamp(state.FinishedAt)
}

// IsEmptyTimestamp reports whether an engine-reported timestamp is "empty",
// that is, absent. Current engines report the [DockerTimestampZero] sentinel,
// but that might change, so anything decoding to a zero epoch value is
// treated as empty, too.
func IsEmptyTimestamp(timestamp string) bool {
	if timestamp == "" || timestamp == DockerTimestampZero {
		return true
	}
	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return false
	}
	return ts.IsZero() || ts.Unix() == 0
}
