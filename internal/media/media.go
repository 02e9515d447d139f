package media

import "context"

// UploadResult is the outcome of pushing an image to the media host.
type UploadResult struct {
	// URL is the public HTTPS location of the stored image.
	URL string `json:"url"`
	// PublicID is the opaque token used to delete the image later.
	PublicID string `json:"public_id"`
}

// Store is the hosted image upload/delete API.
//
// Destroy is best-effort from the caller's point of view: request handlers
// log a failed destroy and carry on, so implementations should surface the
// error rather than hide it.
type Store interface {
	Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
	Ping(ctx context.Context) error
}
