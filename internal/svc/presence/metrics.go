package presence

// Metrics receives the client's counters. Implemented by svc/prometheus.
type Metrics interface {
	GatewayStateChanged(state string)
	GatewayConnected()
	GatewayDisconnected()
	GatewayReconnectScheduled()
	GatewayMessage(op string)
	GatewayMalformedMessage()
	PresenceUpdated()
	PresenceFetched(ok bool)
}

type noopMetrics struct{}

func (noopMetrics) GatewayStateChanged(string) {}
func (noopMetrics) GatewayConnected() {}
func (noopMetrics) GatewayDisconnected() {}
func (noopMetrics) GatewayReconnectScheduled() {}
func (noopMetrics) GatewayMessage(string) {}
func (noopMetrics) GatewayMalformedMessage() {}
func (noopMetrics) PresenceUpdated() {}
func (noopMetrics) PresenceFetched(bool) {}
