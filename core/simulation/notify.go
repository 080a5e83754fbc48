package simulation

import (
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/core/model"
	"github.com/ANUBushfireInitiative/bushfire-drone-simulation/internal/eventbus"
)

// NotificationKind discriminates strike lifecycle notifications.
type NotificationKind int

const (
	StrikeSpawned NotificationKind = iota
	StrikeInspected
	StrikeSuppressed
	StrikeUninspected
	StrikeUnsuppressed
)

// Notification reports one strike lifecycle transition as the run advances.
type Notification struct {
	Kind   NotificationKind
	Strike *model.Strike
	Time   float64
}

// Notifications returns the bus carrying strike lifecycle notifications.
// Subscribers run synchronously on the simulation loop, so they observe
// transitions in exact event order.
func (s *Simulator) Notifications() *eventbus.Bus[Notification] {
	if s.notify == nil {
		s.notify = eventbus.New[Notification]()
	}
	return s.notify
}
