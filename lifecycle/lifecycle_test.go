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

package lifecycle

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/docker/docker/api/types"
	"github.com/pkg/errors"

	"github.com/thediveo/anchorage/test/mockingmoby"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
	. "github.com/thediveo/fdooze"
	. "github.com/thediveo/success"
)

const testImage = "busybox:latest"

var testSpec = ContainerSpec{
	Image: testImage,
	Cmd:   []string{"/bin/sh", "-c", "while true; do cat /content.txt | nc -l -p 80; done"},
	Name:  "nervous_nelly",
}

// briskly retries without any artificial delays, so specs run instantly.
func briskly() backoff.BackOff {
	return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, DefaultAttempts-1)
}

var _ = Describe("start retry coordination", func() {

	BeforeEach(func() {
		goodfds := Filedescriptors()
		DeferCleanup(func() {
			Eventually(Goroutines).ShouldNot(HaveLeaked())
			Expect(Filedescriptors()).NotTo(HaveLeakedFds(goodfds))
		})
	})

	var mm *mockingmoby.MockingMoby

	BeforeEach(func() {
		mm = mockingmoby.NewMockingMoby()
		mm.AddImage(testImage)
	})

	It("brings a container up on the first attempt", func(ctx context.Context) {
		configured := 0
		started := 0
		c := New(mm, Hooks{
			Configure: func(ctx context.Context) error { configured++; return nil },
			Starting: func(ctx context.Context, details types.ContainerJSON) error {
				started++
				Expect(details.State.Running).To(BeTrue())
				return nil
			},
		}, WithBackOff(briskly()))
		Expect(c.State()).To(Equal(NotStarted))

		id := Successful(c.Start(ctx, testSpec))
		Expect(id).NotTo(BeEmpty())
		Expect(c.State()).To(Equal(Running))
		Expect(c.ContainerID()).To(Equal(id))
		Expect(c.Attempts()).To(Equal(1))
		Expect(configured).To(Equal(1))
		Expect(started).To(Equal(1))
	})

	It("runs the one-time configuration exactly once across retried attempts", func(ctx context.Context) {
		configured := 0
		firstAttempt := true
		c := New(mm, Hooks{
			Configure: func(ctx context.Context) error { configured++; return nil },
			Starting: func(ctx context.Context, details types.ContainerJSON) error {
				if firstAttempt {
					firstAttempt = false
					return errors.New("could not start container on the first attempt")
				}
				return nil
			},
		}, WithBackOff(briskly()))

		id := Successful(c.Start(ctx, testSpec))
		Expect(c.State()).To(Equal(Running))
		Expect(c.Attempts()).To(Equal(2))
		Expect(configured).To(Equal(1))

		// The failed attempt's container must have been scrapped; only the
		// successful attempt's container remains.
		Expect(mm.ContainerCount()).To(Equal(1))
		cntr, ok := mm.Container(id)
		Expect(ok).To(BeTrue())
		Expect(cntr.Status).To(Equal(mockingmoby.MockedRunning))
	})

	It("gives up after the attempt budget is spent", func(ctx context.Context) {
		c := New(mm, Hooks{
			Starting: func(ctx context.Context, details types.ContainerJSON) error {
				return errors.New("borked beyond all recognition")
			},
		}, WithBackOff(briskly()))

		_, err := c.Start(ctx, testSpec)
		var serr *StartupError
		Expect(errors.As(err, &serr)).To(BeTrue())
		Expect(serr.Attempts).To(Equal(DefaultAttempts))
		Expect(serr).To(MatchError(ContainSubstring("borked beyond all recognition")))
		Expect(c.State()).To(Equal(Failed))
		Expect(mm.ContainerCount()).To(BeZero())
	})

	It("doesn't retry a failing one-time configuration", func(ctx context.Context) {
		configured := 0
		c := New(mm, Hooks{
			Configure: func(ctx context.Context) error {
				configured++
				return errors.New("duplicate mount point '/content.txt'")
			},
		}, WithBackOff(briskly()))

		_, err := c.Start(ctx, testSpec)
		Expect(err).To(MatchError(ContainSubstring("duplicate mount point")))
		Expect(configured).To(Equal(1))
		Expect(c.State()).To(Equal(Failed))
		Expect(c.Attempts()).To(BeZero())
	})

	It("fails attempts for images the engine doesn't have", func(ctx context.Context) {
		c := New(mm, Hooks{}, WithBackOff(briskly()))
		_, err := c.Start(ctx, ContainerSpec{Image: "no-such:image"})
		var serr *StartupError
		Expect(errors.As(err, &serr)).To(BeTrue())
		Expect(serr.Attempts).To(Equal(DefaultAttempts))
	})

})
