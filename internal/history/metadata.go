package history

import "context"

// Metadata describes the artifact a command produced. Commands attach it
// to their context; the root command reads it back when recording.
type Metadata struct {
	Mode     string
	Artifact string
	Digest   string
}

type metadataKey struct{}

// WithMetadata attaches render metadata to a context. Empty fields keep
// any value already attached.
func WithMetadata(ctx context.Context, meta Metadata) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	existing, _ := ctx.Value(metadataKey{}).(Metadata)
	merged := Metadata{
		Mode:     pick(meta.Mode, existing.Mode),
		Artifact: pick(meta.Artifact, existing.Artifact),
		Digest:   pick(meta.Digest, existing.Digest),
	}
	return context.WithValue(ctx, metadataKey{}, merged)
}

// MetadataFromContext returns render metadata stored in the context.
func MetadataFromContext(ctx context.Context) Metadata {
	if ctx == nil {
		return Metadata{}
	}
	meta, _ := ctx.Value(metadataKey{}).(Metadata)
	return meta
}

func pick(next, fallback string) string {
	if next != "" {
		return next
	}
	return fallback
}
