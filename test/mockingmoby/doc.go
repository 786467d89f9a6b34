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

// Package mockingmoby is a mock Docker engine client for unit tests,
// implementing just enough of the engine API to provision throwaway
// containers: listing and pulling images, creating, starting, waiting for,
// reading the logs of, inspecting, and removing containers, as well as
// pinging the mocked engine and reporting its version. All other service API
// methods panic when tried.
//
// Tests can inject faults at API call boundaries by attaching hooks to the
// context passed into API calls, see WithHook.
package mockingmoby
