package hub

import "github.com/gin-contrib/sse"

// Event is one realtime notification. Data must be JSON-serializable; it is
// encoded once per SSE write by the transport.
type Event struct {
	Name string
	Data any
}

// SSE converts the event to the wire representation.
func (e Event) SSE() sse.Event {
	return sse.Event{Event: e.Name, Data: e.Data}
}

func CartUpdated(cart any, totals any) Event {
	return Event{Name: "cart.updated", Data: map[string]any{"cart": cart, "totals": totals}}
}

func OrderCreated(order any) Event {
	return Event{Name: "order.created", Data: map[string]any{"order": order}}
}

func OrderUpdated(order any) Event {
	return Event{Name: "order.updated", Data: map[string]any{"order": order}}
}

func PaymentUpdated(payment any) Event {
	return Event{Name: "payment.updated", Data: map[string]any{"payment": payment}}
}

func SessionClosed(sessionID, reason string) Event {
	return Event{Name: "session.closed", Data: map[string]any{"sessionId": sessionID, "reason": reason}}
}

func SessionState(state any) Event {
	return Event{Name: "session.state", Data: state}
}

func AssistanceRequested(sessionID, tableCode, note string) Event {
	return Event{Name: "table.assistanceRequested", Data: map[string]any{
		"sessionId": sessionID,
		"tableCode": tableCode,
		"note":      note,
	}}
}

func MenuUpdated(version string) Event {
	return Event{Name: "menu.updated", Data: map[string]any{"version": version}}
}
