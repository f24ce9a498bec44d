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

// Package logging configures the process-wide slog logger.
//
// Records go to stderr as JSON and carry the module and version attributes.
// LOG_LEVEL selects the level (debug, info, warn, error; info when unset).
// Debug records include the source location.
//
// # Journald
//
// When the systemd journal socket is reachable, every record is also sent
// to journald with a matching priority. Attributes become journal fields:
// keys are upper-cased, characters outside [A-Z0-9] turn into underscores
// and group names are joined with an underscore, so
//
//	slog.Info("proposed", slog.Group("grub", slog.String("timeout", "8")))
//
// is stored with GRUB_TIMEOUT=8. Set BOOTCFG_JOURNAL=off to keep records on
// stderr only.
//
// # Usage
//
//	logging.SetDefaultStructuredLoggerWithLevel("bootcfg", version, level)
//	slog.Info("writing grub defaults", slog.String("path", path))
package logging
