// Package photo loads an input image once and exposes the forms the
// resolvers need: raw bytes for fingerprinting and detection, and a decoded
// image for barcode scanning.
package photo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/webp"

	"nutriscan/internal/fingerprint"
	"nutriscan/internal/services"
)

// ErrEmpty is returned for zero-length image data.
var ErrEmpty = errors.New("image data is empty")

// Photo is an immutable loaded image. Decoding is deferred until Image is
// first called and the result is memoized.
type Photo struct {
	name        string
	data        []byte
	fingerprint fingerprint.Digest

	once    sync.Once
	decoded image.Image
	format  string
	err     error
}

// Load reads path from disk.
func Load(path string) (*Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return FromBytes(filepath.Base(path), data)
}

// FromBytes wraps already loaded bytes. The slice is retained; callers must
// not modify it afterwards.
func FromBytes(name string, data []byte) (*Photo, error) {
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrValidation, "photo", "load", name, ErrEmpty)
	}
	return &Photo{
		name:        name,
		data:        data,
		fingerprint: fingerprint.Of(data),
	}, nil
}

// Name is the base name the photo was loaded from.
func (p *Photo) Name() string { return p.name }

// Bytes returns the raw encoded image.
func (p *Photo) Bytes() []byte { return p.data }

// Fingerprint returns the content digest.
func (p *Photo) Fingerprint() fingerprint.Digest { return p.fingerprint }

// ContentType sniffs the MIME type of the encoded bytes.
func (p *Photo) ContentType() string { return http.DetectContentType(p.data) }

// Image decodes the photo. The error is wrapped with services.ErrDecode.
func (p *Photo) Image() (image.Image, error) {
	p.once.Do(func() {
		img, format, err := image.Decode(bytes.NewReader(p.data))
		if err != nil {
			p.err = services.Wrap(services.ErrDecode, "photo", "decode", p.name, err)
			return
		}
		p.decoded = img
		p.format = format
	})
	return p.decoded, p.err
}

// Format reports the decoder that handled the image, empty before a
// successful Image call.
func (p *Photo) Format() string {
	_, _ = p.Image()
	return p.format
}
