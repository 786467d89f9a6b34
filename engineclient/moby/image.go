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
	"context"
	"encoding/json"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/thediveo/anchorage/engineclient"
)

// EnsureImage makes sure the image with the specified reference is locally
// present, pulling it if necessary. Pulling blocks on a one-shot latch that
// fires on the first progress message the engine streams back; the stream
// then gets drained in the background until the pull has run its course. A
// pull that doesn't even make first progress within the specified timeout
// fails.
func EnsureImage(ctx context.Context, moby engineclient.RuntimeAPIClient, ref string, timeout time.Duration) error {
	images, err := moby.ImageList(ctx, types.ImageListOptions{})
	if err != nil {
		return errors.Wrap(err, "cannot list local images")
	}
	for _, image := range images {
		if slices.Contains(image.RepoTags, ref) {
			return nil
		}
	}
	progress, err := moby.ImagePull(ctx, ref, types.ImagePullOptions{})
	if err != nil {
		return errors.Wrapf(err, "cannot pull image %q", ref)
	}
	firstprogress := make(chan struct{})
	go func() {
		defer progress.Close()
		latched := false
		dec := json.NewDecoder(progress)
		for {
			var msg jsonmessage.JSONMessage
			if err := dec.Decode(&msg); err != nil {
				return
			}
			if !latched {
				close(firstprogress)
				latched = true
			}
		}
	}()
	select {
	case <-firstprogress:
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "pulling image %q aborted", ref)
	case <-time.After(timeout):
		return errors.Errorf("pull of image %q made no progress within %s", ref, timeout)
	}
}
