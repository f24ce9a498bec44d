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

package install

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootcfg_command_runs_total",
			Help: "Total number of installer command invocations",
		},
		[]string{"command", "result"},
	)

	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bootcfg_command_duration_seconds",
			Help:    "Duration of installer command invocations in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"command"},
	)
)

func observeCommand(name string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	commandRuns.WithLabelValues(name, result).Inc()
	commandDuration.WithLabelValues(name).Observe(d.Seconds())
}
