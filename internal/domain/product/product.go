package product

// Record is one product as returned by the catalog. The core treats it as
// opaque JSON beyond counting and partitioning; only the identifier is read.
type Record map[string]any

// ID returns the record identifier, trying the common catalog key spellings.
func (r Record) ID() string {
	for _, key := range []string{"salsify:id", "id"} {
		if v, ok := r[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// ResultSet is the ordered records of one catalog fetch. The catalog's
// natural return order must survive chunking and aggregation.
type ResultSet []Record

// Chunk is a contiguous, order-preserving slice of a ResultSet tagged with
// its original position.
type Chunk struct {
	Index   int
	Records []Record
}

// Partition splits a ResultSet into ordered chunks of at most size records.
// Chunks partition the set exactly: no overlap, no gaps, union = original.
// The last chunk may be smaller. size < 1 is treated as 1.
func Partition(rs ResultSet, size int) []Chunk {
	if size < 1 {
		size = 1
	}
	chunks := make([]Chunk, 0, (len(rs)+size-1)/size)
	for start := 0; start < len(rs); start += size {
		end := min(start+size, len(rs))
		chunks = append(chunks, Chunk{Index: len(chunks), Records: rs[start:end]})
	}
	return chunks
}

// ChunkResult is the outcome of summarizing one chunk, tagged with the
// original chunk index for exact reordering after concurrent completion.
type ChunkResult struct {
	Index  int
	Text   string
	Failed bool
}
