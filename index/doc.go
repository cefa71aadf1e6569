// Package index implements the four-tree datom index family of spec.md
// §4.6 (C7): EAV, AVE, VAE, and TxLog, each a btree.Tree over composite
// big-endian keys with empty values, plus the IndexManager that keeps
// them in sync per insert/delete.
package index
