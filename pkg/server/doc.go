// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes a node's bootloader configuration over HTTP.
//
// The server is read-only. Every request reads the configuration files
// anew, so the answer always reflects what is on disk.
//
// # Endpoints
//
//	GET /             index of routes and readiness
//	GET /health       liveness
//	GET /ready        readiness, 503 while starting or draining
//	GET /metrics      Prometheus metrics
//	GET /v1/config    BootloaderConfig document (?format=json|yaml)
//	GET /v1/summary   short human readable summary
//
// API routes pass through request ID, version negotiation, panic recovery,
// rate limiting and request logging middleware. System routes do not.
//
// # Usage
//
//	cfg := server.NewConfig()
//	cfg.Handlers = server.Handlers(source, version.Tag)
//	s := server.New(server.WithConfig(cfg))
//	err := s.Start(ctx)
//
// PORT and SHUTDOWN_TIMEOUT_SECONDS override the listen port and the
// graceful shutdown period.
package server
