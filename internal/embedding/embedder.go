// Package embedding turns query text into the same vector space the vault
// indexer embedded chunks into. The ONNX path requires CGO and the
// onnxruntime shared library; the mock is deterministic and dependency-free.
package embedding

import "context"

// Embedder produces a vector embedding for text. Search calls Embed once per
// query. Embed must not be called after Close.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}
