package decode

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalRGB_DropsAlphaAndPacksRows(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 4, G: 5, B: 6, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{R: 7, G: 8, B: 9, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 11, B: 12, A: 255})

	got := CanonicalRGB(img)
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	if !bytes.Equal(got, want) {
		t.Errorf("CanonicalRGB() = %v, want %v", got, want)
	}
}

func TestCanonicalRGB_NonZeroOrigin(t *testing.T) {
	full := image.NewGray(image.Rect(0, 0, 3, 1))
	full.Pix = []byte{10, 20, 30}
	sub := full.SubImage(image.Rect(1, 0, 3, 1))

	got := CanonicalRGB(sub)
	want := []byte{20, 20, 20, 30, 30, 30}
	if !bytes.Equal(got, want) {
		t.Errorf("CanonicalRGB() = %v, want %v", got, want)
	}
}

func TestCanonicalRGB_ConvertsDecoderColorModels(t *testing.T) {
	ycc := image.NewYCbCr(image.Rect(0, 0, 2, 1), image.YCbCrSubsampleRatio444)
	for i := range ycc.Y {
		ycc.Y[i], ycc.Cb[i], ycc.Cr[i] = 255, 128, 128
	}
	cmyk := image.NewCMYK(image.Rect(0, 0, 2, 1))
	cmyk.SetCMYK(1, 0, color.CMYK{K: 255})

	tests := []struct {
		name string
		img  image.Image
		want []byte
	}{
		{"ycbcr", ycc, []byte{255, 255, 255, 255, 255, 255}},
		{"cmyk", cmyk, []byte{255, 255, 255, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalRGB(tt.img); !bytes.Equal(got, tt.want) {
				t.Errorf("CanonicalRGB() = %v, want %v", got, tt.want)
			}
		})
	}
}

func writeJPEG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", name, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding %s: %v", name, err)
	}
	return path
}

func TestJPEG_DecodePixels(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	path := writeJPEG(t, dir, "a.jpg", img)

	t.Run("canonical size", func(t *testing.T) {
		got, err := JPEG{}.DecodePixels(path)
		if err != nil {
			t.Fatalf("DecodePixels() error = %v", err)
		}
		if len(got) != 16*8*3 {
			t.Errorf("len = %d, want %d", len(got), 16*8*3)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := JPEG{}.DecodePixels(path)
		if err != nil {
			t.Fatalf("DecodePixels() error = %v", err)
		}
		b, err := JPEG{}.DecodePixels(path)
		if err != nil {
			t.Fatalf("DecodePixels() error = %v", err)
		}
		if !bytes.Equal(a, b) {
			t.Error("two decodes of the same file differ")
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.jpg")
		if err := os.WriteFile(bad, []byte("not a jpeg"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := (JPEG{}).DecodePixels(bad); err == nil {
			t.Error("DecodePixels() expected error for corrupt file")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := (JPEG{}).DecodePixels(filepath.Join(dir, "missing.jpg")); err == nil {
			t.Error("DecodePixels() expected error for missing file")
		}
	})
}
