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

package bootloader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	readTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootcfg_read_total",
			Help: "Total number of configuration reads",
		},
		[]string{"result"},
	)
	writeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootcfg_write_total",
			Help: "Total number of configuration writes",
		},
		[]string{"result"},
	)
	proposeTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bootcfg_propose_total",
			Help: "Total number of proposals computed",
		},
	)
	mergeTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bootcfg_merge_total",
			Help: "Total number of configurations merged",
		},
	)
	kernelParamsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bootcfg_kernel_params",
			Help: "Number of tokens on the default kernel command line after the last propose or merge",
		},
	)
)
