package event

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/baechuer/church-service/internal/domain"
)

var allowedImageExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Image is an uploaded file before it is stored.
type Image struct {
	Filename string
	Data     []byte
}

// ValidateImage checks size, the extension allow-list, the sniffed mime type
// and that the header decodes as the claimed format. It returns the canonical
// content type and extension.
func ValidateImage(img Image, maxBytes int64) (string, string, error) {
	if int64(len(img.Data)) > maxBytes {
		return "", "", domain.ErrPayloadTooLarge("image exceeds the upload size limit")
	}
	if len(img.Data) == 0 {
		return "", "", domain.ErrValidationMeta("image is empty", map[string]string{"invalid": "image"})
	}

	ext := strings.ToLower(filepath.Ext(img.Filename))
	want, ok := allowedImageExt[ext]
	if !ok {
		return "", "", domain.ErrValidationMeta("unsupported image extension", map[string]string{"invalid": "image"})
	}

	sniffed := http.DetectContentType(img.Data)
	if sniffed != want {
		return "", "", domain.ErrValidationMeta("image content does not match its extension", map[string]string{"invalid": "image"})
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(img.Data)); err != nil {
		return "", "", domain.ErrValidationMeta("image could not be decoded", map[string]string{"invalid": "image"})
	}
	return want, ext, nil
}
