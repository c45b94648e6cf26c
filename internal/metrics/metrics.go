package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	updatesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "burovik",
			Name:      "updates_received_total",
			Help:      "Count of Telegram updates received by type.",
		},
		[]string{"type"},
	)

	dialogEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "burovik",
			Name:      "dialog_events_total",
			Help:      "Count of dialog events applied by kind.",
		},
		[]string{"kind"},
	)

	quotesCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "burovik",
			Name:      "quotes_completed_total",
			Help:      "Count of quote calculations that reached the final screen.",
		},
	)

	sendErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "burovik",
			Name:      "telegram_send_errors_total",
			Help:      "Count of failed Telegram send/edit calls.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(updatesReceived, dialogEvents, quotesCompleted, sendErrors)
	})
}

func IncUpdateReceived(kind string) {
	updatesReceived.WithLabelValues(kind).Inc()
}

func IncDialogEvent(kind string) {
	dialogEvents.WithLabelValues(kind).Inc()
}

func IncQuoteCompleted() {
	quotesCompleted.Inc()
}

func IncSendError() {
	sendErrors.Inc()
}
