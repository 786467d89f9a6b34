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
Package anchorage discovers and validates a usable Docker engine endpoint,
hands out a process-wide validated client for it, and helps tools that
provision throwaway ("one-shot") test containers to do so reliably across
heterogeneous environments: a local engine socket, a remote TCP daemon, or a
docker-machine provisioned VM. Callers never need to know which of these
environments they actually are running in.

The root package contains the pure container status classification helpers;
these interpret the partial and at times unreliable state information an
engine reports when inspecting a container.

# Endpoint Discovery

The [github.com/thediveo/anchorage/config] package resolves an engine endpoint
by walking an ordered chain of strategies, where an explicit configuration
(such as the usual DOCKER_HOST environment variable) always wins over any
auto-detected engine. The first strategy to succeed determines the endpoint
for the rest of the process lifetime.

# Client Factory

The [github.com/thediveo/anchorage/factory] package maintains the single
process-wide engine client. On first acquisition it resolves the endpoint and
then gates the client behind one-time preconditions: the engine version must
be recent enough and the engine must have sufficient free disk space, the
latter measured by running a short-lived throwaway container. Subsequent
acquisitions only ping the engine in order to fail fast in case the engine
has gone away in the meantime.

# Start Retries

The [github.com/thediveo/anchorage/lifecycle] package starts containers on
behalf of callers, retrying transiently failing start attempts while
guaranteeing that a caller's one-time setup runs exactly once, no matter how
many attempts it finally takes.
*/
package anchorage
