/*
Copyright 2026 the GoShop Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package api provides integration test utilities for the GoShop API.
//
// # Client
//
// APIClient is a thin wrapper over net/http. It knows the
// base URL, the bearer token and the endpoint paths, and it returns every
// response as is: status codes are the signal under test, so nothing is
// retried and nothing is interpreted. W3C trace context headers are added
// to every request so a failing call can be found in the server logs.
//
// When VALIDATE_RESPONSES is set each response is additionally checked
// against the embedded OpenAPI document in openapi/goshop.yaml.
//
// # Fixtures
//
// Fixtures distinguish two kinds of trouble:
//   - A missing precondition, such as no admin credential on the target
//     environment, skips the spec.
//   - A broken contract, such as registration failing for any reason other
//     than the email being taken, fails the spec.
//
// The admin token and the shared test category are computed once per
// process and are read only afterwards. Everything else, including the
// authenticated user clients, is private to a single spec.
//
// # Configuration
//
// Configuration comes from the environment, optionally seeded from
// test/.env, see LoadTestConfig.
package api
