// Package store provides SQLite-backed durable storage for pipeline output.
//
// Resource tables are created dynamically from frame schemas; the only fixed
// table is load_runs, an audit trail of executions. Two write dispositions
// are supported:
//
//   - Replace: drop and rewrite the table (bronze and gold layers)
//   - Merge: upsert keyed on a primary key column (silver layer)
//
// Merge loading also evolves the destination schema - new columns appearing
// in a later publication are added with ALTER TABLE, never by dropping data.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
