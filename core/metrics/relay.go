package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		relayEventsTotal,
		relayTransitionsTotal,
		relayMembershipChecksTotal,
		relayPublishesTotal,
	)
}

var (
	relayEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_total",
			Help: "Events routed into the conversation machine by kind.",
		},
		[]string{"kind"},
	)

	relayTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_transitions_total",
			Help: "Conversation state changes by source and target state.",
		},
		[]string{"from", "to"},
	)

	relayMembershipChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_membership_checks_total",
			Help: "Per-community membership lookups by outcome (satisfied/missing/error).",
		},
		[]string{"outcome"},
	)

	relayPublishesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_publishes_total",
			Help: "Channel publish attempts by status (ok/fail).",
		},
		[]string{"status"},
	)
)

func IncRelayEvent(kind string) {
	relayEventsTotal.WithLabelValues(norm(kind)).Inc()
}

func IncRelayTransition(from, to string) {
	relayTransitionsTotal.WithLabelValues(norm(from), norm(to)).Inc()
}

func IncMembershipCheck(outcome string) {
	relayMembershipChecksTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncPublish(status string) {
	relayPublishesTotal.WithLabelValues(norm(status)).Inc()
}
