package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatbotMetrics tracks how often each scripted intent fires.
type ChatbotMetrics struct {
	intents *prometheus.CounterVec
}

// NewChatbotMetrics registers the chatbot metrics on the provided registerer.
func NewChatbotMetrics(reg prometheus.Registerer) *ChatbotMetrics {
	if reg == nil {
		return &ChatbotMetrics{}
	}
	intents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatbot_intent_total",
		Help: "Chatbot messages handled, by resolved intent.",
	}, []string{"intent"})
	reg.MustRegister(intents)
	return &ChatbotMetrics{intents: intents}
}

// IncIntent increments the counter for the resolved intent.
func (m *ChatbotMetrics) IncIntent(intent string) {
	if m == nil || m.intents == nil {
		return
	}
	m.intents.WithLabelValues(normalizeLabel(intent)).Inc()
}
