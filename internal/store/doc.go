// Package store provides the SQLite-backed storage engine for hit data.
//
// The store exposes generic primitives keyed by table name and ordered
// column-value pairs:
//   - FindEntryID: equality lookup returning the first matching id
//   - InsertEntry: insert returning the auto-assigned id
//   - UpdateEntry: update named columns of one row
//   - ScanTable: read every row, used to hydrate caches at startup
//
// Every value is bound as a query parameter. Table and column names are
// checked against the schema registry before any SQL is built, so only
// declared identifiers ever reach a statement.
//
// # Batching
//
// Writes run inside an implicit transaction. After BatchSize successful
// writes (default 100) the transaction commits and a new one begins.
// Flush and Close commit whatever is open. A process that dies without
// Close loses at most the writes of the current batch.
//
// # Database Configuration
//
//   - WAL mode: readers on other connections see committed batches
//   - synchronous=NORMAL: Balance durability/performance
//   - foreign_keys=ON: Enforce referential integrity
//   - One open connection: the store is the only writer and owns it
package store
