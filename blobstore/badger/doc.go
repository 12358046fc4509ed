// Package badger stores generator snapshots in an embedded BadgerDB.
//
// Each blob is a single key. Streaming writes are buffered and committed
// in one transaction on Close, so readers never see a partial snapshot.
package badger
