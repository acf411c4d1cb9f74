package imagestore

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"nutriscan/internal/config"
	"nutriscan/internal/services"
)

var generatedName = regexp.MustCompile(`^maggi_2-minute_noodles_[0-9a-f]{6}\.jpg$`)

func gradientPNG(t *testing.T, invert bool) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(x * 4)
			if invert {
				v = uint8((x / 8 % 2) * 255)
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestName(t *testing.T) {
	name := Name("Maggi 2-Minute Noodles")
	if !generatedName.MatchString(name) {
		t.Fatalf("unexpected name %q", name)
	}
	if Name("x") == Name("x") {
		t.Fatal("expected random suffixes to differ")
	}
	if got := LabelFromName(name); got != "maggi 2-minute noodles" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestDirSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	store := NewDir(dir, nil)

	path, err := store.Save(context.Background(), "Maggi 2-Minute Noodles", []byte("jpeg"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Dir(path) != dir || !generatedName.MatchString(filepath.Base(path)) {
		t.Fatalf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "jpeg" {
		t.Fatalf("unexpected saved bytes %q err=%v", data, err)
	}
	if _, err := store.Save(context.Background(), "x", nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Save(t *testing.T) {
	fake := &fakeS3{}
	store := newS3WithClient(fake, S3Config{Bucket: "snacks", Prefix: "learned/"}, nil)

	data := gradientPNG(t, false)
	location, err := store.Save(context.Background(), "sting energy drink", data)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	key := aws.ToString(fake.input.Key)
	if !strings.HasPrefix(key, "learned/sting_energy_drink_") || !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("unexpected key %q", key)
	}
	if location != "s3://snacks/"+key {
		t.Fatalf("unexpected location %q", location)
	}
	if aws.ToString(fake.input.ContentType) != "image/png" {
		t.Fatalf("unexpected content type %q", aws.ToString(fake.input.ContentType))
	}

	fake.err = errors.New("access denied")
	if _, err := store.Save(context.Background(), "x", data); !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestListAndNearDuplicates(t *testing.T) {
	dir := t.TempDir()
	same := gradientPNG(t, false)
	write := func(name string, data []byte) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("sting_aaaaaa.jpg", same)
	write("sting_bbbbbb.jpg", same)
	write("maggi_cccccc.jpg", gradientPNG(t, true))
	write("notes.txt", []byte("ignore me"))
	write("broken_dddddd.jpg", []byte("not an image"))

	entries, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 4 || entries[0].Name != "broken_dddddd.jpg" || entries[3].Label != "sting" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	pairs, err := NearDuplicates(context.Background(), dir, 4, 0, nil)
	if err != nil {
		t.Fatalf("NearDuplicates: %v", err)
	}
	if len(pairs) == 0 {
		t.Fatal("expected at least one near-duplicate pair")
	}
	first := pairs[0]
	if first.Distance != 0 || !first.SameLabel() || first.A.Label != "sting" {
		t.Fatalf("unexpected closest pair %+v", first)
	}
}

func TestListMissingDir(t *testing.T) {
	entries, err := List(filepath.Join(t.TempDir(), "missing"))
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty listing, got %v err=%v", entries, err)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.ImageDir = t.TempDir()
	store, err := New(context.Background(), &cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := store.(*Dir); !ok {
		t.Fatalf("expected dir backend, got %T", store)
	}

	cfg.Images.Backend = config.ImageBackendS3
	cfg.Images.S3Bucket = ""
	if _, err := New(context.Background(), &cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	cfg.Images.Backend = "ftp"
	if _, err := New(context.Background(), &cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
