package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/N1femi/Thriva/internal/badge"
)

var (
	badgesAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thriva_badges_awarded_total",
			Help: "Badges that transitioned from not earned to earned",
		},
		[]string{"badge"},
	)
	badgeRecomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thriva_badge_recompute_total",
			Help: "Badge recompute runs per domain and outcome",
		},
		[]string{"domain", "outcome"},
	)
	badgeRecomputeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thriva_badge_recompute_duration_seconds",
			Help:    "Duration of a badge recompute per domain",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"domain"},
	)
)

// RegisterBadgeMetrics registers the badge engine collectors. Call once from main.
func RegisterBadgeMetrics(reg prometheus.Registerer) {
	reg.MustRegister(badgesAwarded, badgeRecomputes, badgeRecomputeDuration)
}

func observeRecompute(domain badge.Domain, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	badgeRecomputes.WithLabelValues(string(domain), outcome).Inc()
	badgeRecomputeDuration.WithLabelValues(string(domain)).Observe(time.Since(start).Seconds())
}
