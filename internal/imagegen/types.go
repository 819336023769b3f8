package imagegen

import "context"

// GenerateRequest is a single text-to-image call.
type GenerateRequest struct {
	Prompt string
	// Size is the provider-side resolution hint, e.g. "1792x1024".
	Size string
}

// GeneratedImage points at the asset produced by the provider.
type GeneratedImage struct {
	URL           string
	RevisedPrompt string
}

// Generator is the contract implemented by image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GeneratedImage, error)
}
