package uploader

// DefaultChunkSize is the raw-byte budget per chunk.
const DefaultChunkSize = 64 * 1024

// EncodedSliceSize converts a raw-byte chunk budget into the length of
// the equivalent base64 text, aligned down to a whole four-character
// group. Alignment keeps every slice independently decodable, so the
// server can decode chunk by chunk and concatenate the results.
func EncodedSliceSize(rawChunkSize int) int {
	n := rawChunkSize * 4 / 3
	n -= n % 4
	if n < 4 {
		n = 4
	}
	return n
}

// Split cuts encoded text into contiguous slices of at most sliceSize
// characters: no overlap, no gap, ceil(len/sliceSize) slices with only
// the last one shorter. Empty input yields no slices.
func Split(encoded string, sliceSize int) []string {
	if encoded == "" {
		return nil
	}
	if sliceSize <= 0 {
		sliceSize = EncodedSliceSize(DefaultChunkSize)
	}

	slices := make([]string, 0, (len(encoded)+sliceSize-1)/sliceSize)
	for start := 0; start < len(encoded); start += sliceSize {
		end := start + sliceSize
		if end > len(encoded) {
			end = len(encoded)
		}
		slices = append(slices, encoded[start:end])
	}
	return slices
}
