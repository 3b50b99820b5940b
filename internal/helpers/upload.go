package helpers

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	AvatarFolder    = "eventoh/avatars"
	VendorFolder    = "eventoh/vendors"
	VenueFolder     = "eventoh/venues"
	PortfolioFolder = "eventoh/portfolio"
)

// UploadFiles streams multipart files to Cloudinary and returns their secure
// URLs in input order. A failed upload aborts the batch.
func UploadFiles(ctx context.Context, cld *cloudinary.Cloudinary, files []*multipart.FileHeader, folder string) ([]string, error) {
	var urls []string

	for _, fh := range files {
		if fh == nil {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s: %v", fh.Filename, err)
		}

		publicID := strings.TrimSuffix(fh.Filename, fileExt(fh.Filename))
		result, err := cld.Upload.Upload(ctx, f, uploader.UploadParams{
			Folder:   folder,
			PublicID: publicID,
			Tags:     []string{"event-oh"},
		})
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to upload image %s: %v", fh.Filename, err)
		}

		urls = append(urls, result.SecureURL)
	}

	return urls, nil
}

func fileExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

// CloudinaryUploader binds a cloudinary client to the uploader interface the
// services consume.
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld}
}

func (u *CloudinaryUploader) UploadFiles(ctx context.Context, files []*multipart.FileHeader, folder string) ([]string, error) {
	return UploadFiles(ctx, u.cld, files, folder)
}
