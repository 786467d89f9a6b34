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

package factory

import (
	"context"
	"os"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/errdefs"
	"github.com/thediveo/anchorage"
	"github.com/thediveo/anchorage/config"
	"github.com/thediveo/anchorage/lifecycle"
	"github.com/thediveo/once"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

// The real McCoy: resolve the local engine endpoint, let the factory run its
// full validation against the live engine, and then bring up a throwaway
// container through the start coordinator. Skipped when there is no local
// engine socket to talk to.
var _ = Describe("a live Docker engine", Serial, func() {

	BeforeEach(func() {
		if _, err := os.Stat(config.DefaultSocketPath); err != nil {
			Skip("needs a local Docker engine")
		}
	})

	It("validates the engine and coordinates a container start", func(ctx context.Context) {
		f := New()
		defer f.close()

		moby := Successful(f.Client(ctx))
		Expect(f.DockerHostIP()).NotTo(BeEmpty())

		By("handing out the same validated client again")
		Expect(Successful(f.Client(ctx))).To(BeIdenticalTo(moby))

		By("bringing up a sleepy container")
		coord := lifecycle.New(moby, lifecycle.Hooks{})
		cntrID := Successful(coord.Start(ctx, lifecycle.ContainerSpec{
			Image: ReferenceImage,
			Cmd:   []string{"/bin/sleep", "60"},
		}))
		scrapOnce := once.Once(func() {
			_ = moby.ContainerRemove(context.Background(), cntrID,
				types.ContainerRemoveOptions{Force: true})
		}).Do
		defer scrapOnce()
		Expect(coord.State()).To(Equal(lifecycle.Running))

		details := Successful(moby.ContainerInspect(ctx, cntrID))
		Expect(anchorage.IsContainerRunning(details.State, 0, time.Now())).To(BeTrue())

		scrapOnce()
		_, err := moby.ContainerInspect(ctx, cntrID)
		Expect(errdefs.IsNotFound(err)).To(BeTrue())
	}, SpecTimeout(2*time.Minute))

})
