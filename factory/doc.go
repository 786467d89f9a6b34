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

/*
Package factory maintains the single process-wide Docker engine client,
resolving the engine endpoint configuration exactly once and gating the
client behind one-time preconditions before handing it out.

The correct endpoint configuration to use gets determined on first use by
running the [github.com/thediveo/anchorage/config] strategy chain, and is
cached thereafter for the remaining process lifetime. The first successfully
constructed client must then pass two hard gates before anyone gets to see
it: the engine version needs to be recent enough, and the engine needs
enough free disk space for test containers to stand a chance. The disk space
gets measured inside the engine's environment, by running a throwaway
container that reports its filesystem usage. Incidental errors during the
disk space measurement (an unpullable reference image, a garbled report) are
logged and ignored, as they don't prove anything about the disk; only a
measured lack of space is fatal. The precondition outcome is cached, so the
gates run at most once per process lifetime.

Every subsequent client acquisition by default pings the engine, failing
fast with [ErrUnreachable] in case the engine has gone away in the meantime.
*/
package factory
