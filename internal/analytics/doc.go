// Package analytics computes aggregate views over the full rating record
// set. Every operation re-reads the store and folds in memory; there are no
// persisted aggregates and no incremental update path.
package analytics
