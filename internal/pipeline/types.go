package pipeline

// RouterConfig configures the record router.
type RouterConfig struct {
	// Buffer sizes (initial capacity; buffers grow under load).
	PointBufferSize    int
	UniverseBufferSize int
	ArchiveBufferSize  int

	// ArchiveEnabled controls whether records are routed to the archive
	// buffer at all. Without an archive nothing would drain it.
	ArchiveEnabled bool
}

// DefaultRouterConfig returns sensible defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		PointBufferSize:    10000,
		UniverseBufferSize: 10000,
		ArchiveBufferSize:  10000,
	}
}

// BufferStats contains buffer statistics.
type BufferStats struct {
	Count         int
	Capacity      int
	TotalReceived int64
	TotalSent     int64
	ResizeCount   int
}

// RouterStats contains runtime statistics.
type RouterStats struct {
	FilingsReceived int64
	RecordsRouted   int64
	ConvertErrors   int64
	EmptyTickers    int64
	PointBuffer     BufferStats
	UniverseBuffer  BufferStats
	ArchiveBuffer   BufferStats
}
