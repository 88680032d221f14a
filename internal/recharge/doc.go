// Package recharge implements prepaid energy credit accounting.
//
// Purchased energy is represented in the telemetry stream itself: a
// recharge appends a measurement whose billing channel counter has been
// increased by the purchased amount, leaving every other field at the
// device's last reported values. Which channel carries billing credit is
// configured per device.
package recharge
