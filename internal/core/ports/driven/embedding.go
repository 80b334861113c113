package driven

import "context"

// EmbeddingService maps text to vectors. Without one, semantic filtering
// is off and the chunk-based strategies receive nothing.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns exactly one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// EmbeddingCache memoises vectors per (model, text).
type EmbeddingCache interface {
	// Get reports a miss with ok == false and a nil error.
	Get(ctx context.Context, model, text string) (vector []float32, ok bool, err error)
	Put(ctx context.Context, model, text string, vector []float32) error
}
