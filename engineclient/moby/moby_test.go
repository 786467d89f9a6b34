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
	"time"

	"github.com/pkg/errors"

	"github.com/thediveo/anchorage/config"
	"github.com/thediveo/anchorage/test/mockingmoby"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
	. "github.com/thediveo/fdooze"
	. "github.com/thediveo/success"
)

const testImage = "alpine:3.2"

var _ = Describe("moby engine plumbing", func() {

	BeforeEach(func() {
		goodfds := Filedescriptors()
		DeferCleanup(func() {
			Eventually(Goroutines).ShouldNot(HaveLeaked())
			Expect(Filedescriptors()).NotTo(HaveLeakedFds(goodfds))
		})
	})

	Context("client construction", func() {

		It("builds a client for a resolved endpoint configuration", func() {
			cfg := Successful(config.Parse("tcp://192.168.99.100:2376"))
			client := Successful(NewClient(cfg))
			defer client.Close()
			Expect(client.DaemonHost()).To(Equal("tcp://192.168.99.100:2376"))
		})

		It("refuses endpoint configurations with TLS materials gone missing", func() {
			cfg := Successful(config.Parse("tcp://192.168.99.100:2376"))
			cfg.TLSVerify = true
			cfg.CertPath = "/nowhere/no-such-certs"
			Expect(NewClient(cfg)).Error().To(HaveOccurred())
		})

	})

	Context("ensuring images to be present", func() {

		var mm *mockingmoby.MockingMoby

		BeforeEach(func() {
			mm = mockingmoby.NewMockingMoby()
		})

		It("is happy with an image that is already present", func(ctx context.Context) {
			mm.AddImage(testImage)
			Expect(EnsureImage(ctx, mm, testImage, time.Second)).To(Succeed())
		})

		It("pulls a missing image, latching onto the first progress", func(ctx context.Context) {
			mm.AllowPull(testImage)
			Expect(EnsureImage(ctx, mm, testImage, 5*time.Second)).To(Succeed())
			Expect(EnsureImage(ctx, mm, testImage, time.Second)).To(Succeed())
		})

		It("reports unpullable images", func(ctx context.Context) {
			Expect(EnsureImage(ctx, mm, testImage, time.Second)).NotTo(Succeed())
		})

	})

	Context("throwaway containers", func() {

		var mm *mockingmoby.MockingMoby

		BeforeEach(func() {
			mm = mockingmoby.NewMockingMoby()
			mm.AddImage(testImage)
		})

		It("runs a throwaway container and returns its buffered output", func(ctx context.Context) {
			mm.ProvideOutput(testImage, "fileystem usage, honest!\n")
			out := Successful(DisposableRun(ctx, mm, testImage, "df", "-P"))
			Expect(out).To(Equal("fileystem usage, honest!\n"))
			Expect(mm.ContainerCount()).To(BeZero())
		})

		It("scraps the throwaway container even for failed runs", func(ctx context.Context) {
			hookedctx := mockingmoby.WithHook(ctx, mockingmoby.ContainerStartPre,
				func(mockingmoby.HookKey) error {
					return errors.New("engine had a bad day")
				})
			Expect(DisposableRun(hookedctx, mm, testImage, "df", "-P")).Error().To(HaveOccurred())
			Expect(mm.ContainerCount()).To(BeZero())
		})

		It("cannot run from a missing image", func(ctx context.Context) {
			Expect(DisposableRun(ctx, mm, "no-such:image", "df")).Error().To(HaveOccurred())
		})

	})

})
