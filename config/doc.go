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
Package config resolves the endpoint configuration for reaching a Docker
engine by trying an ordered chain of independent resolution strategies,
returning the first successful resolution.

The order of the default chain is significant: an explicit configuration via
the well-known DOCKER_HOST (and friends) environment variables always wins,
so that users can override whatever would otherwise be auto-detected. Next in
line is a docker-machine provisioned engine, and finally the engine reachable
through the local default API socket. Strategies that are not applicable in
the current environment signal this with [ErrUnavailable] and the chain simply
moves on; only when the whole chain comes up empty-handed does [Discover]
fail with [ErrNoConfigFound].
*/
package config
