package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrAttachmentEmpty    = errors.New("ไฟล์แนบว่างเปล่า")
	ErrAttachmentTooLarge = errors.New("ไฟล์แนบมีขนาดเกินกำหนด")
	ErrAttachmentType     = errors.New("รองรับเฉพาะไฟล์ PDF, JPG, PNG")
)

var allowedAttachmentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

type FileUpload struct {
	Name string
	Data []byte
}

// inspect checks size and content type and returns the detected MIME type.
func (f *FileUpload) inspect(maxSize int64) (string, error) {
	if len(f.Data) == 0 {
		return "", ErrAttachmentEmpty
	}
	if int64(len(f.Data)) > maxSize {
		return "", fmt.Errorf("%w (%d MB)", ErrAttachmentTooLarge, maxSize/(1024*1024))
	}

	mime := mimetype.Detect(f.Data)
	for allowed := range allowedAttachmentTypes {
		if mime.Is(allowed) {
			return allowed, nil
		}
	}
	return "", ErrAttachmentType
}

// fileName keeps the user's base name and makes sure the extension matches
// the detected type.
func (f *FileUpload) fileName(mime string) string {
	name := filepath.Base(strings.TrimSpace(f.Name))
	if name == "." || name == "/" || name == "" {
		name = "evidence"
	}
	ext := strings.ToLower(filepath.Ext(name))
	want := allowedAttachmentTypes[mime]
	if ext == want || (want == ".jpg" && ext == ".jpeg") {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + want
}
