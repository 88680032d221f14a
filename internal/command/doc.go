// Package command implements the per-device command queue.
//
// The gateway cannot push to devices behind NAT, so control flows through
// a polled queue: the backend enqueues commands, devices fetch their
// pending list, execute, and confirm. Reads are non-destructive; only an
// explicit confirmation retires a command, so a device that crashes
// mid-execution sees the command again on its next poll.
package command
