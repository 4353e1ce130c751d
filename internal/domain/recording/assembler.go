package recording

import (
	"bytes"
	"context"
)

// PayloadSource yields chunk payloads in ascending index order.
// Both chunk stores satisfy it.
type PayloadSource interface {
	OrderedPayloads(ctx context.Context, recordingID string) ([][]byte, error)
}

// Reassemble concatenates all stored chunk payloads for recordingID in
// ascending index order. Plain byte concatenation: no delimiters, no
// checksums. With gapless zero-based indices and no duplicates the
// result is byte-identical to the original source; gaps or duplicate
// indices shape the output accordingly. The only integrity gate is
// the expected-size check applied at finalize.
func Reassemble(ctx context.Context, src PayloadSource, recordingID string) ([]byte, error) {
	payloads, err := src.OrderedPayloads(ctx, recordingID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for _, p := range payloads {
		buf.Write(p)
	}
	return buf.Bytes(), nil
}
