// Package migration implements a file-driven schema migration engine.
//
// Migrations live on disk as <id>.up.sql / <id>.down.sql pairs, where <id> is
// timestamp-prefixed so lexicographic order equals chronological order
// (e.g. "2025_10_10_121530_create_users"). The runner applies pending
// up-scripts in id order, records each applied migration in a tracking table
// together with a SHA-256 checksum of the up-script, and rolls back the most
// recently applied migrations via their down-scripts.
//
// Checksums give drift detection: editing a migration file after it has been
// applied fails the next run instead of silently diverging schema history.
// Each migration runs in its own transaction; there is no cross-migration
// transaction, so a failure leaves earlier migrations committed.
//
// The runner is designed for single-process CLI invocation and takes no
// cross-process locks; running two migrators concurrently against one
// database is a deployment-level mistake it does not defend against.
package migration
