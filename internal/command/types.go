package command

import "time"

// Command statuses. A command is created pending and moves to executed
// exactly once, when the device confirms it.
const (
	StatusPending  = "pending"
	StatusExecuted = "executed"
)

// Command is a control instruction queued for a device. Devices poll
// their queue, act on each pending command, and confirm execution.
type Command struct {
	ID         string         `json:"id"`
	DeviceID   string         `json:"device_id"`
	Type       string         `json:"command_type"`
	Parameters map[string]any `json:"parameters"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"timestamp"`
}

// Pending reports whether the command is still awaiting confirmation.
func (c *Command) Pending() bool {
	return c.Status == StatusPending
}
