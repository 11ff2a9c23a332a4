package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(telegramUpdatesTotal, telegramAPICallsTotal, webhookRequestsTotal)
}

var (
	telegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_total",
			Help: "Inbound updates handled by kind and status.",
		},
		[]string{"kind", "status"},
	)

	telegramAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_api_calls_total",
			Help: "Outbound Bot API calls by method and status class.",
		},
		[]string{"method", "status"},
	)

	webhookRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "HTTP requests served by the webhook receiver by route and status code.",
		},
		[]string{"route", "code"},
	)
)

func IncTelegramUpdate(kind, status string) {
	telegramUpdatesTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}

func IncTelegramCall(method, status string) {
	telegramAPICallsTotal.WithLabelValues(norm(method), norm(status)).Inc()
}

func IncWebhookRequest(route, code string) {
	webhookRequestsTotal.WithLabelValues(norm(route), norm(code)).Inc()
}
