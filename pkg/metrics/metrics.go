// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics exposes the Prometheus counters and histograms emitted
// by a scan, served over the optional --metrics-addr endpoint.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ScansTotal counts completed scans.
	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gend",
		Name:      "scans_total",
		Help:      "Total number of completed scans",
	})

	// FilesScannedTotal counts files processed across all scans.
	FilesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gend",
		Name:      "files_scanned_total",
		Help:      "Total number of files processed across all scans",
	})

	// CallablesByStatus counts callables classified into each drift status
	// in the most recent scan. Labels: status (fresh, stale, undocumented).
	CallablesByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gend",
		Name:      "callables_by_status",
		Help:      "Callables classified into each drift status, as of the last scan",
	}, []string{"status"})

	// ParseErrorsTotal counts per-file parse failures across all scans.
	ParseErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gend",
		Name:      "parse_errors_total",
		Help:      "Total number of per-file parse failures across all scans",
	})

	// ScanDurationSeconds observes wall-clock scan duration.
	ScanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gend",
		Name:      "scan_duration_seconds",
		Help:      "Wall-clock duration of a full scan pass",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
	})
)

// Server serves the /metrics endpoint on addr until Shutdown is called.
type Server struct {
	httpServer *http.Server
}

// Serve starts listening on addr in the background. A non-nil error sent
// on the returned channel means the listener failed; nil means it was
// shut down cleanly.
func Serve(addr string) (*Server, <-chan error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	return &Server{httpServer: httpServer}, errCh
}

// Shutdown gracefully stops the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
