package client

import (
	"context"

	"github.com/menta2k/image-cropper/pkg/types"
)

// TransformService is the remote service that lists, serves and crops images
type TransformService interface {
	Iter(ctx context.Context, index int) (*types.ImageInfo, error)
	ImageURL(imageID string) string
	FetchImage(ctx context.Context, imageID string) ([]byte, error)
	Transform(ctx context.Context, imageID string, payload any) (string, error)
}
