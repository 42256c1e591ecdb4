// Package imagetest generates small image fixtures for tests.
package imagetest

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
)

// Tag is one ASCII EXIF tag to embed. IfdPath defaults to the root IFD;
// "IFD1" places the tag in the thumbnail directory.
type Tag struct {
	IfdPath string
	Name    string
	Value   string
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	return img
}

// PNG returns an encoded w×h PNG without metadata.
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(w, h)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// JPEG returns an encoded w×h JPEG carrying the given EXIF tags.
func JPEG(t testing.TB, w, h int, tags ...Tag) []byte {
	t.Helper()

	var plain bytes.Buffer
	if err := jpeg.Encode(&plain, solid(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if len(tags) == 0 {
		return plain.Bytes()
	}

	intfc, err := jpegstructure.NewJpegMediaParser().ParseBytes(plain.Bytes())
	if err != nil {
		t.Fatalf("parse jpeg: %v", err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		t.Fatalf("ifd mapping: %v", err)
	}
	ti := exif.NewTagIndex()
	rootIb := exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder)

	var thumbIb *exif.IfdBuilder
	for _, tag := range tags {
		ib := rootIb
		switch {
		case tag.IfdPath == "IFD1":
			if thumbIb == nil {
				thumbIb = exif.NewIfdBuilder(im, ti, exifcommon.Ifd1StandardIfdIdentity, exifcommon.EncodeDefaultByteOrder)
				if err := rootIb.SetNextIb(thumbIb); err != nil {
					t.Fatalf("link ifd1: %v", err)
				}
			}
			ib = thumbIb
		case tag.IfdPath != "" && tag.IfdPath != "IFD":
			ib, err = exif.GetOrCreateIbFromRootIb(rootIb, tag.IfdPath)
			if err != nil {
				t.Fatalf("child ifd %s: %v", tag.IfdPath, err)
			}
		}
		if err := ib.AddStandardWithName(tag.Name, tag.Value); err != nil {
			t.Fatalf("add tag %s: %v", tag.Name, err)
		}
	}

	if err := sl.SetExif(rootIb); err != nil {
		t.Fatalf("set exif: %v", err)
	}

	var out bytes.Buffer
	if err := sl.Write(&out); err != nil {
		t.Fatalf("write jpeg: %v", err)
	}
	return out.Bytes()
}

// WriteFile writes data to dir/name, creating dir as needed, and returns the path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
