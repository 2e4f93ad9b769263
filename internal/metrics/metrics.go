// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts scan attempts by outcome: recorded, duplicate,
	// closed, not_found, error.
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "absensi_scans_total",
		Help: "Scan attempts by outcome.",
	}, []string{"outcome"})

	// SessionsCreated counts sessions opened by admins.
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "absensi_sessions_created_total",
		Help: "Attendance sessions created.",
	})

	// RosterSubscribers tracks currently connected live roster viewers.
	RosterSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "absensi_roster_subscribers",
		Help: "Open live roster streams.",
	})
)
