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
	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("precondition gates", func() {

	Context("the engine version gate", func() {

		DescribeTable("gating on dotted engine versions",
			func(version string, acceptable bool) {
				err := checkVersion(version)
				if acceptable {
					Expect(err).NotTo(HaveOccurred())
					return
				}
				var unsupported *UnsupportedVersionError
				Expect(errors.As(err, &unsupported)).To(BeTrue())
				Expect(unsupported.Version).To(Equal(version))
			},
			Entry("too old by minor", "1.5.9", false),
			Entry("minimum acceptable", "1.6.0", true),
			Entry("newer major", "2.0.0", true),
			Entry("stone age", "0.9.0", false),
			Entry("modern engine", "24.0.7", true),
		)

		It("chokes on versions beyond parsing", func() {
			Expect(checkVersion("banana")).To(HaveOccurred())
			Expect(checkVersion("1.banana.0")).To(HaveOccurred())
			var unsupported *UnsupportedVersionError
			Expect(errors.As(checkVersion("banana"), &unsupported)).To(BeFalse())
		})

	})

	Context("the df report parser", func() {

		const report = `Filesystem           1024-blocks    Used Available Capacity Mounted on
overlay              103079868  14000000  89079868  14% /
tmpfs                    65536         0     65536   0% /dev
shm                      65536         0     65536   0% /dev/shm
`

		It("extracts the root filesystem row by column position", func() {
			availableKB, usedPercent, err := parseDiskUsage(report)
			Expect(err).NotTo(HaveOccurred())
			Expect(availableKB).To(Equal(89079868))
			Expect(usedPercent).To(Equal(14))
		})

		It("fails closed on reports without a root filesystem row", func() {
			_, _, err := parseDiskUsage("Filesystem 1024-blocks Used Available Capacity Mounted on\n")
			Expect(err).To(HaveOccurred())
		})

		It("fails closed on garbled root filesystem rows", func() {
			_, _, err := parseDiskUsage("overlay banana fruit salad 14% /\n")
			Expect(err).To(HaveOccurred())
		})

	})

})
