package polling

import (
	"fmt"
	"time"
)

// ConnectionStatus is the simulated liveness of the data feed.
type ConnectionStatus string

const (
	Connected    ConnectionStatus = "connected"
	Reconnecting ConnectionStatus = "reconnecting"
	Disconnected ConnectionStatus = "disconnected"
)

// Statuses lists every connection status.
var Statuses = []ConnectionStatus{Connected, Reconnecting, Disconnected}

// Label returns the short indicator text for the status.
func (s ConnectionStatus) Label() string {
	switch s {
	case Connected:
		return "Live"
	case Reconnecting:
		return "Updating..."
	default:
		return "Offline"
	}
}

// ConnectionState is the scheduler's externally visible state.
type ConnectionState struct {
	Status         ConnectionStatus `json:"status"`
	LastUpdateAt   time.Time        `json:"lastUpdateAt"`
	HasActiveAlert bool             `json:"hasActiveAlert"`
}

// FormatLastUpdate renders how long ago t was relative to now.
func FormatLastUpdate(now, t time.Time) string {
	diff := int(now.Sub(t).Minutes())
	switch {
	case diff < 1:
		return "Just now"
	case diff < 60:
		return fmt.Sprintf("%dm ago", diff)
	default:
		return t.Format("15:04")
	}
}
