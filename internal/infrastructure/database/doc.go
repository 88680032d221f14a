// Package database provides SQLite connectivity for the EnerLink gateway.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Additive-only schema migrations embedded into the binary
//   - Connection lifecycle and health checks
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// A failed connection at startup is fatal to the process: the gateway
// fails fast rather than serving requests it cannot persist.
package database
