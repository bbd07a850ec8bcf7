// Package storage defines the persistence interfaces of the pipeline:
// the chunk store written by ingestion, the status tracker state, and
// the groundedness score records. Implementations must be thread-safe
// and tolerate concurrent calls for the same document identifier.
package storage
