package page

// Free pages carry no payload. InitFree gives a page a well-defined,
// recognizable on-disk byte pattern. The reuse path does not call it: a
// page on the allocator's reuse list keeps its stale content until it is
// reinitialized as whatever type next claims it.
func InitFree(buf []byte) {
	buf[0] = byte(TypeFree)
	clear(buf[1:FreeHeaderSize])
}
