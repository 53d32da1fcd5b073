package caption

import "context"

// PathCaptioner is the placeholder image captioner: it returns the stored
// file path unchanged, so an uploaded image is treated as a plain style
// description downstream. This is an acknowledged limitation of the current
// pipeline; the domain.ImageCaptioner boundary exists so a vision model can
// replace this implementation without touching the handler or orchestrator.
type PathCaptioner struct{}

// NewPathCaptioner creates the passthrough captioner
func NewPathCaptioner() *PathCaptioner {
	return &PathCaptioner{}
}

// Describe returns the image path as the description
func (c *PathCaptioner) Describe(ctx context.Context, imagePath string) (string, error) {
	return imagePath, nil
}
