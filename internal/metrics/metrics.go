package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    bookingCreated = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "car_rental",
            Name:      "booking_created_total",
            Help:      "Count of bookings created by status.",
        },
        []string{"status"},
    )

    bookingRejected = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "car_rental",
            Name:      "booking_overlap_rejected_total",
            Help:      "Count of booking requests rejected for date overlap.",
        },
    )

    bookingCancelled = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "car_rental",
            Name:      "booking_cancelled_total",
            Help:      "Count of bookings cancelled by renters.",
        },
    )

    moderationDecision = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "car_rental",
            Name:      "moderation_decision_total",
            Help:      "Count of admin moderation decisions over listings.",
        },
        []string{"decision"},
    )

    ratingSubmitted = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "car_rental",
            Name:      "rating_submitted_total",
            Help:      "Count of ratings submitted or replaced.",
        },
    )
)

// Register registers metrics (idempotent).
func Register() {
    once.Do(func() {
        prometheus.MustRegister(bookingCreated, bookingRejected, bookingCancelled, moderationDecision, ratingSubmitted)
    })
}

func IncBookingCreated(status string) {
    bookingCreated.WithLabelValues(status).Inc()
}

func IncBookingOverlapRejected() {
    bookingRejected.Inc()
}

func IncBookingCancelled() {
    bookingCancelled.Inc()
}

func IncModerationDecision(decision string) {
    moderationDecision.WithLabelValues(decision).Inc()
}

func IncRatingSubmitted() {
    ratingSubmitted.Inc()
}
