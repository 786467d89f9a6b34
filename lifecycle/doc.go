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
Package lifecycle starts containers on behalf of callers that need their
one-time container setup to be applied exactly once, even when the actual
start needs several attempts to succeed.

A [Coordinator] takes two caller-supplied hooks: a configure hook carrying
the one-time side effects (such as mounting a fixed resource into the
container, which an engine refuses to do twice), and a starting hook invoked
on every single start attempt with the freshly inspected container details.
A failing starting hook makes only that attempt fail: the coordinator scraps
the attempt's container and tries again, with the configure hook's effects
left untouched. Only when the attempt budget is exhausted does the
coordinator give up, failing with a [StartupError] that carries the last
attempt's underlying cause.
*/
package lifecycle
