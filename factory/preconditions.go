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
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/thediveo/anchorage/engineclient"
	"github.com/thediveo/anchorage/engineclient/moby"
)

// ReferenceImage is the known small image the disk space check runs its
// throwaway reporting container from.
const ReferenceImage = "alpine:3.2"

// MinimumDiskSpaceMB is the amount of free disk space, in MB, below which
// test container execution is unlikely to succeed.
const MinimumDiskSpaceMB = 2048

// UnsupportedVersionError signals an engine version too old to be usable.
type UnsupportedVersionError struct {
	Version string // the version the engine reported.
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("Docker version 1.6.0+ is required, but version %s was found", e.Version)
}

// NotEnoughDiskSpaceError signals that the engine's environment has less
// free disk space than MinimumDiskSpaceMB, so execution is unlikely to
// succeed. It is a hard gate and never gets downgraded to a warning.
type NotEnoughDiskSpaceError struct {
	AvailableMB int // free disk space found, in MB.
}

func (e *NotEnoughDiskSpaceError) Error() string {
	return fmt.Sprintf("not enough disk space in Docker environment: %d MB available, %d MB required",
		e.AvailableMB, MinimumDiskSpaceMB)
}

// checkPreconditions runs the one-time version and disk space gates against
// a freshly constructed engine client. Version failures and measured disk
// space shortage are fatal; any incidental error while measuring the disk
// space only is logged and then ignored, as it doesn't prove anything about
// the disk.
func (f *Factory) checkPreconditions(ctx context.Context, client engineclient.RuntimeAPIClient) error {
	version, err := client.ServerVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot determine Docker engine version")
	}
	if err := checkVersion(version.Version); err != nil {
		return err
	}
	if err := f.checkDiskSpace(ctx, client); err != nil {
		var toofull *NotEnoughDiskSpaceError
		if errors.As(err, &toofull) {
			return err
		}
		log.Warnf("encountered and ignored error while checking disk space: %s", err)
	}
	return nil
}

// checkVersion gates on the engine version: versions before 1.6 lack API
// features we rely upon. Versions that cannot be understood at all also
// fail, albeit with a parse error instead.
func checkVersion(version string) error {
	fields := strings.SplitN(version, ".", 3)
	if len(fields) < 2 {
		return errors.Errorf("cannot parse Docker engine version %q", version)
	}
	major, err := strconv.Atoi(fields[0])
	if err != nil {
		return errors.Wrapf(err, "cannot parse Docker engine version %q", version)
	}
	minor, err := strconv.Atoi(fields[1])
	if err != nil {
		return errors.Wrapf(err, "cannot parse Docker engine version %q", version)
	}
	if major < 1 || (major == 1 && minor < 6) {
		return &UnsupportedVersionError{Version: version}
	}
	return nil
}

// checkDiskSpace measures whether the engine's environment is likely to
// have disk space problems, by running a throwaway container from the
// reference image that reports its filesystem usage.
func (f *Factory) checkDiskSpace(ctx context.Context, client engineclient.RuntimeAPIClient) error {
	if err := moby.EnsureImage(ctx, client, f.refImage, f.pullTimeout); err != nil {
		return err
	}
	report, err := moby.DisposableRun(ctx, client, f.refImage, "df", "-P")
	if err != nil {
		return err
	}
	availableKB, usedPercent, err := parseDiskUsage(report)
	if err != nil {
		return err
	}
	availableMB := availableKB / 1024
	log.Infof("disk utilization in Docker environment is %d%% (%d MB available)",
		usedPercent, availableMB)
	if availableMB < MinimumDiskSpaceMB {
		return &NotEnoughDiskSpaceError{AvailableMB: availableMB}
	}
	return nil
}

// parseDiskUsage extracts the available kilobytes and used capacity percent
// of the root filesystem from a POSIX "df -P" report. The fixed column
// positions are df -P's documented output contract: blocks, used,
// available, capacity, and mount point in fields 1 through 5. Reports
// without an understandable root filesystem row fail, to be treated as
// inconclusive by the caller.
func parseDiskUsage(report string) (availableKB int, usedPercent int, err error) {
	for _, line := range strings.Split(report, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 6 || fields[5] != "/" {
			continue
		}
		availableKB, err = strconv.Atoi(fields[3])
		if err != nil {
			return 0, 0, errors.Wrapf(err, "garbled available-blocks field in df report row %q", line)
		}
		usedPercent, err = strconv.Atoi(strings.TrimSuffix(fields[4], "%"))
		if err != nil {
			return 0, 0, errors.Wrapf(err, "garbled capacity field in df report row %q", line)
		}
		return availableKB, usedPercent, nil
	}
	return 0, 0, errors.New("no root filesystem row in df report")
}
