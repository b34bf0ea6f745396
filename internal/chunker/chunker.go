// Package chunker splits cache keys into bounded batches so a single store
// round-trip never carries an unbounded command.
package chunker

const (
	// DefaultMaxItems caps the number of keys per round-trip.
	DefaultMaxItems = 500

	// DefaultMaxBytes caps the estimated wire size of one round-trip.
	DefaultMaxBytes = 1 << 20

	// argOverhead approximates the RESP framing around one bulk string ("$<len>\r\n...\r\n").
	argOverhead = 16
)

// EstimateBytes estimates the wire size of one key or value.
func EstimateBytes(item string) int {
	return len(item) + argOverhead
}

// ChunkBySize splits items into batches of at most maxItems entries and at most
// maxBytes estimated bytes. Items are never split and keep their order; an item
// larger than maxBytes travels alone.
func ChunkBySize(items []string, maxItems, maxBytes int) [][]string {
	if len(items) == 0 {
		return nil
	}

	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	var chunks [][]string
	var current []string
	currentBytes := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, current)
			current = nil
			currentBytes = 0
		}
	}

	for _, item := range items {
		size := EstimateBytes(item)

		if size > maxBytes {
			flush()
			chunks = append(chunks, []string{item})
			continue
		}

		if len(current) == maxItems || currentBytes+size > maxBytes {
			flush()
		}

		current = append(current, item)
		currentBytes += size
	}

	flush()
	return chunks
}
