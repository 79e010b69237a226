package metrics

import "time"

// Metric names emitted by the payment flow.
const (
	EventPayment     = "payment"
	EventNegotiation = "chain_negotiation"
	EventRecord      = "record"
	EventLoad        = "link_load"

	OpPay    = "pay"
	OpLoad   = "load"
	OpRecord = "record"
)

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
