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

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/errdefs"
)

// AddImage makes an image with the specified reference present in the mocked
// engine's local image storage.
func (mm *MockingMoby) AddImage(ref string) {
	mm.mux.Lock()
	defer mm.mux.Unlock()
	mm.images = append(mm.images, ref)
}

// AllowPull makes the mocked registry serve the image with the specified
// reference, so pulling it succeeds.
func (mm *MockingMoby) AllowPull(ref string) {
	mm.mux.Lock()
	defer mm.mux.Unlock()
	mm.pullable[ref] = true
}

// ProvideOutput sets the canned stdout that containers created from the
// specified image reference will "produce" when run.
func (mm *MockingMoby) ProvideOutput(ref string, stdout string) {
	mm.mux.Lock()
	defer mm.mux.Unlock()
	mm.outputs[ref] = stdout
}

// ImageList returns summaries of the images present in the mocked engine.
func (mm *MockingMoby) ImageList(ctx context.Context, options types.ImageListOptions) ([]image.Summary, error) {
	if err := isCtxCancelled(ctx); err != nil {
		return nil, err
	}
	if err := callHook(ctx, ImageListPre); err != nil {
		return nil, err
	}
	mm.mux.RLock()
	defer mm.mux.RUnlock()
	summaries := make([]image.Summary, 0, len(mm.images))
	for _, ref := range mm.images {
		summaries = append(summaries, image.Summary{
			ID:       "sha256:" + strings.Repeat("0", 64),
			RepoTags: []string{ref},
		})
	}
	return summaries, nil
}

// ImagePull pulls an image from the mocked registry, if that serves the
// specified reference (see AllowPull). The image becomes present immediately;
// the returned stream of a few JSON progress messages is purely cosmetic.
func (mm *MockingMoby) ImagePull(ctx context.Context, ref string, options types.ImagePullOptions) (io.ReadCloser, error) {
	if err := isCtxCancelled(ctx); err != nil {
		return nil, err
	}
	if err := callHook(ctx, ImagePullPre); err != nil {
		return nil, err
	}
	mm.mux.RLock()
	pullable := mm.pullable[ref]
	mm.mux.RUnlock()
	if !pullable {
		return nil, errdefs.NotFound(fmt.Errorf("mocked registry serves no image %q", ref))
	}
	// Callers latching onto the first progress message must not be able to
	// outpace the mocked pull.
	mm.AddImage(ref)
	progress := strings.NewReader(
		`{"status":"Pulling from mocked/` + ref + `"}` + "\n" +
			`{"status":"Download complete"}` + "\n" +
			`{"status":"Status: Downloaded newer image for ` + ref + `"}` + "\n")
	return io.NopCloser(progress), nil
}
