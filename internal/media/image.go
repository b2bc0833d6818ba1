package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	// ErrNotImage means the bytes are not a JPEG, PNG or GIF.
	ErrNotImage = errors.New("file is not an accepted image")
	// ErrTooLarge means the upload exceeds the configured limit.
	ErrTooLarge = errors.New("file is too large")
)

// AcceptedTypes lists the extensions accepted for image fields, in message order.
var AcceptedTypes = []string{"jpeg", "png", "jpg", "gif"}

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Upload is a validated image held in memory until it is stored.
type Upload struct {
	Filename    string
	ContentType string
	Ext         string
	Size        int64
	Body        io.Reader
}

// Inspect sniffs data and enforces the size limit.
func Inspect(filename string, data []byte, maxBytes int64) (*Upload, error) {
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	mt := mimetype.Detect(data)
	ext, ok := imageExt[mt.String()]
	if !ok {
		return nil, ErrNotImage
	}
	return &Upload{
		Filename:    filename,
		ContentType: mt.String(),
		Ext:         ext,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}, nil
}

// ReadImage loads a multipart file, reading at most one byte past maxBytes.
func ReadImage(fh *multipart.FileHeader, maxBytes int64) (*Upload, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	r := io.Reader(f)
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return Inspect(fh.Filename, data, maxBytes)
}

// NewKey returns a fresh storage key "<dir>/<uuid><ext>".
func NewKey(dir, ext string) string {
	return dir + "/" + uuid.NewString() + ext
}
