// Package schema implements spec.md §4.7 (C8): the eight reserved
// meta-schema attributes, their bootstrap datoms, the entity-partition
// scheme, and the in-memory attribute cache reloaded after any
// transaction that touches a partition-db entity.
package schema
