package consts

import "time"

// Boundary limits
const (
	// MaxCStringLen bounds the scan for a NUL terminator in caller-supplied strings
	MaxCStringLen = 64 * 1024 * 1024
)

// Buffer sizes used by the CLI when it drives the boundary with its own memory
const (
	// BufferSize1KB is 1 kilobyte
	BufferSize1KB = 1024
	// BufferSize64KB is 64 kilobytes
	BufferSize64KB = 64 * 1024
	// BufferSize10MB is 10 megabytes
	BufferSize10MB = 10 * 1024 * 1024
)

// Render defaults
const (
	// DefaultTabWidth is the tab width used by the HTML formatter
	DefaultTabWidth = 4
	// DefaultRenderCacheEntries is the default upper bound of memoised renders
	DefaultRenderCacheEntries = 256
	// DefaultRenderCacheTTL is how long a memoised render stays valid
	DefaultRenderCacheTTL = 5 * time.Minute
)
