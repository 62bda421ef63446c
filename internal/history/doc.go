// Package history persists a summary of every crawl in a SQLite database so
// reports and placements can be inspected after the run log is overwritten.
//
// Each run stores its counts, the registered nodes with their derived paths,
// every rediscovery, and the duplicate report rows. RecordRun writes all of it
// in one transaction. The schema is embedded and versioned; a database created
// by a different version is rejected with ErrSchemaMismatch rather than being
// migrated in place.
package history
