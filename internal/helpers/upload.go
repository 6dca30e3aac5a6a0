package helpers

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const EventsFolder = "events"

// ImageUploader stores an event image and can remove it again when the
// event insert that referenced it fails.
type ImageUploader interface {
	Upload(ctx context.Context, source, folder string) (url, publicID string, err error)
	Destroy(ctx context.Context, publicID string) error
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld}
}

// Upload accepts anything Cloudinary can ingest: a data URI, remote URL or local path.
func (u *CloudinaryUploader) Upload(ctx context.Context, source, folder string) (string, string, error) {
	if strings.TrimSpace(source) == "" {
		return "", "", fmt.Errorf("empty image source")
	}
	res, err := u.cld.Upload.Upload(ctx, source, uploader.UploadParams{
		Folder: folder,
		Tags:   []string{"entcal"},
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload image: %w", err)
	}
	if res.Error.Message != "" {
		return "", "", fmt.Errorf("failed to upload image: %s", res.Error.Message)
	}
	return res.SecureURL, res.PublicID, nil
}

func (u *CloudinaryUploader) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if _, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to destroy image %s: %w", publicID, err)
	}
	return nil
}
