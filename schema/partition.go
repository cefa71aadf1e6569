package schema

// PartitionShift splits an entity id into its top-10-bit partition and a
// 54-bit local counter, per the GLOSSARY's "top 10 bits of an entity id".
const PartitionShift = 54

const (
	PartitionSchema uint64 = 0
	PartitionTx     uint64 = 1
	PartitionUser   uint64 = 2
)

// EntityID combines a partition and a local counter value into one
// entity id.
func EntityID(partition, local uint64) uint64 {
	return partition<<PartitionShift | local
}

// Partition extracts the partition from an entity id.
func Partition(entity uint64) uint64 {
	return entity >> PartitionShift
}
