// Copyright 2026 Blink Labs Software
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

package distribution

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	recordsProcessed prometheus.Counter
	batchesPublished prometheus.Counter
	publishFailures  prometheus.Counter
	publishDuration  prometheus.Histogram
	lastBatchSum     prometheus.Gauge
}

// NewMetrics registers the pipeline metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	promautoFactory := promauto.With(reg)
	return &Metrics{
		recordsProcessed: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "seedsdist_records_processed_total",
			Help: "number of ledger records included in published batches",
		}),
		batchesPublished: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "seedsdist_batches_published_total",
			Help: "number of batches with a signing request",
		}),
		publishFailures: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "seedsdist_publish_failures_total",
			Help: "number of batches that failed to build or publish",
		}),
		publishDuration: promautoFactory.NewHistogram(prometheus.HistogramOpts{
			Name:    "seedsdist_publish_duration_seconds",
			Help:    "time spent building and publishing one batch",
			Buckets: prometheus.DefBuckets,
		}),
		lastBatchSum: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "seedsdist_last_batch_sum",
			Help: "target amount total of the last published batch",
		}),
	}
}
