package photo

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"nutriscan/internal/fingerprint"
	"nutriscan/internal/services"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 3)
	}
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLoadDecodesAndFingerprints(t *testing.T) {
	data := encodePNG(t)
	path := filepath.Join(t.TempDir(), "snack.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name() != "snack.png" {
		t.Fatalf("unexpected name %q", p.Name())
	}
	if p.Fingerprint() != fingerprint.Of(data) {
		t.Fatalf("fingerprint mismatch")
	}
	img, err := p.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if img.Bounds().Dx() != 8 || p.Format() != "png" {
		t.Fatalf("unexpected decode result %v %q", img.Bounds(), p.Format())
	}
	if p.ContentType() != "image/png" {
		t.Fatalf("unexpected content type %q", p.ContentType())
	}
}

func TestImageDecodeFailureIsMarked(t *testing.T) {
	p, err := FromBytes("junk.jpg", []byte("not an image"))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if _, err := p.Image(); !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected decode marker, got %v", err)
	}
	if p.Format() != "" {
		t.Fatalf("expected empty format")
	}
}

func TestFromBytesRejectsEmpty(t *testing.T) {
	if _, err := FromBytes("empty.jpg", nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.jpg")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
