package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsTotal counts appointment bindings by outcome
	// (booked, rebound, cancelled, rejected, conflict).
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cabinet_bookings_total",
		Help: "Total number of appointment binding operations",
	}, []string{"outcome"})

	// SlotsGeneratedTotal counts slots created by working-day
	// declarations.
	SlotsGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cabinet_slots_generated_total",
		Help: "Total number of slots created by working day declarations",
	})

	// RemindersSentTotal counts reminder emails sent by the worker.
	RemindersSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cabinet_reminders_sent_total",
		Help: "Total number of appointment reminder emails sent",
	})

	// RemindersFailedTotal counts reminder emails that could not be
	// delivered.
	RemindersFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cabinet_reminders_failed_total",
		Help: "Total number of appointment reminder emails that failed",
	})
)
