// Package sqlite is the local driven.VectorIndex backend, built on the pure
// Go modernc.org/sqlite driver so the binary stays CGO-free.
//
// Vectors are little-endian float32 BLOBs. Search loads the rows of one
// index and ranks them by cosine similarity in Go, which suits knowledge
// bases of a few thousand chunks. Several named indexes share one file,
// ~/.ailab/data/vectors.db unless index.path says otherwise.
//
// Open applies any pending NNN_*.up.sql script from the embedded migrations
// package and records it in schema_migrations. The connection runs in WAL
// mode with a busy timeout, so queries proceed during an ingest.
package sqlite
