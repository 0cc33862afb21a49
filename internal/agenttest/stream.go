package agenttest

import (
	"bytes"
	"context"
	"io"

	"github.com/semmidev/kustos/internal/domain"
)

// StreamFrom builds an OpenStream yielding the given chunks in order.
func StreamFrom(chunks ...[]byte) domain.OpenStream {
	return func(ctx context.Context) (io.ReadCloser, error) {
		readers := make([]io.Reader, 0, len(chunks))
		for _, chunk := range chunks {
			readers = append(readers, bytes.NewReader(chunk))
		}
		return io.NopCloser(io.MultiReader(readers...)), nil
	}
}
