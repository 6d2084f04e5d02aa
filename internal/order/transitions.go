package order

import "github.com/tableserve/api/internal/auth"

type edge struct{ from, to Status }

// transitions lists the status edges each staff role may drive. Admin
// mirrors kitchen and waiter and can additionally cancel anything not yet
// served.
var transitions = map[auth.Role][]edge{
	auth.RoleAdmin: {
		{StatusNew, StatusAccepted},
		{StatusAccepted, StatusInProgress},
		{StatusInProgress, StatusReady},
		{StatusReady, StatusServed},
		{StatusNew, StatusCancelled},
		{StatusAccepted, StatusCancelled},
		{StatusInProgress, StatusCancelled},
		{StatusReady, StatusCancelled},
	},
	auth.RoleKitchen: {
		{StatusNew, StatusAccepted},
		{StatusAccepted, StatusInProgress},
		{StatusInProgress, StatusReady},
		{StatusReady, StatusCancelled},
	},
	auth.RoleWaiter: {
		{StatusReady, StatusServed},
	},
}

// TransitionAllowed reports whether role may move an order from one status
// to another. A same-status update is always a permitted no-op.
func TransitionAllowed(role auth.Role, from, to Status) bool {
	if from == to {
		return true
	}
	for _, e := range transitions[role] {
		if e.from == from && e.to == to {
			return true
		}
	}
	return false
}
