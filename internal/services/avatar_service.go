package services

import (
	"context"
	"fmt"
	"os"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// AvatarService mirrors provider profile pictures to Cloudinary. The
// URLs WhatsApp hands out are short-lived; the mirrored copy keeps the
// avatar displayable after the original expires.
type AvatarService struct {
	cld *cloudinary.Cloudinary
}

func NewAvatarService() (*AvatarService, error) {
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("missing Cloudinary configuration")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &AvatarService{cld: cld}, nil
}

// MirrorAvatar uploads the image behind sourceURL and returns the stable
// hosted URL. Cloudinary fetches remote URLs itself, so no download step.
func (s *AvatarService) MirrorAvatar(ctx context.Context, ownerID string, sourceURL string) (string, error) {
	publicID := fmt.Sprintf("wa_avatars/user_%s", ownerID)

	uploadParams := uploader.UploadParams{
		PublicID:       publicID,
		Folder:         "remindme/avatars",
		Overwrite:      &[]bool{true}[0],
		ResourceType:   "image",
		Transformation: "c_fill,g_face,h_300,w_300/q_auto,f_auto",
	}

	result, err := s.cld.Upload.Upload(ctx, sourceURL, uploadParams)
	if err != nil {
		return "", fmt.Errorf("failed to mirror avatar: %w", err)
	}

	return result.SecureURL, nil
}
