package locate

import "context"

// Locator resolves a free-text query or URL to a local media file.
type Locator interface {
	Locate(ctx context.Context, query string) (string, error)
}
