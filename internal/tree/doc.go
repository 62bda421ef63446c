// Package tree builds the parent/child graph of a crawl and tracks items that
// are reachable from more than one container.
//
// The State type owns every structure a run mutates: the identity registry
// (first placement of each identity), the duplicate tracker (every later
// placement), the FIFO work queue of references awaiting expansion, the
// download queue of leaves awaiting materialization, and the map of
// materialized library paths. The Walker applies the placement rules as nodes
// arrive from the extractor.
//
// Nothing here performs I/O or locking; a State belongs to a single run and
// is driven from one goroutine.
package tree
