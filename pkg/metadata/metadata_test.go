package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/developertyrone/sortimages/internal/imagetest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func quietExtractor() *Extractor {
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return NewExtractor(log)
}

func stubExif(t *testing.T, doc string, err error) {
	t.Helper()
	original := readExifFunc
	readExifFunc = func(string) (string, error) { return doc, err }
	t.Cleanup(func() { readExifFunc = original })
}

func stubChangeTime(t *testing.T, when time.Time) {
	t.Helper()
	original := changeTimeFunc
	changeTimeFunc = func(string) (time.Time, error) { return when, nil }
	t.Cleanup(func() { changeTimeFunc = original })
}

func TestExtractDatePriority(t *testing.T) {
	stubChangeTime(t, time.Date(2019, 1, 15, 12, 0, 0, 0, time.Local))

	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"creation first", `{"DateTime":"2020:05:03 10:00:00","DateTimeDigitized":"2011:01:01 00:00:00"}`, "2020:05:03 10:00:00"},
		{"digitized second", `{"DateTimeDigitized":"2011:02:03 04:05:06","GPSDateStamp":"2012:01:01"}`, "2011:02:03 04:05:06"},
		{"gps last", `{"GPSDateStamp":"2012:07:08"}`, "2012:07:08"},
		{"undefined skipped", `{"DateTime":"undefined","GPSDateStamp":"2012:07:08"}`, "2012:07:08"},
		{"zero timestamp skipped", `{"DateTime":"0000:00:00 00:00:00"}`, "2019:01:15"},
		{"change time fallback", `{}`, "2019:01:15"},
		{"sentinel passes through", `{"DateTime":"Undefined Date"}`, UndefinedDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stubExif(t, tc.doc, nil)
			md, err := quietExtractor().Extract("photo.png", FieldDate)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if md.Date != tc.want {
				t.Errorf("Date = %q, want %q", md.Date, tc.want)
			}
		})
	}
}

func TestExtractDateToleratesUnreadableExif(t *testing.T) {
	stubExif(t, "", errors.New("no exif"))
	stubChangeTime(t, time.Date(2019, 1, 15, 0, 0, 0, 0, time.Local))

	md, err := quietExtractor().Extract("photo.png", FieldDate)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if md.Date != "2019:01:15" {
		t.Errorf("Date = %q, want 2019:01:15", md.Date)
	}
}

func TestExtractOrigin(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"model and software", `{"Model":"iPhone 12","Software":"Snapseed","Make":"Apple"}`, "iPhone 12 - Snapseed"},
		{"version software dropped", `{"Model":"Canon EOS","Software":"1.0.2"}`, "Canon EOS"},
		{"camera version dropped", `{"Model":"X100","Software":"Camera 3.1"}`, "X100"},
		{"software only", `{"Software":"Adobe Photoshop 7.0"}`, "Adobe Photoshop 7.0"},
		{"make only", `{"Make":"NIKON","Software":"2.00"}`, "NIKON"},
		{"nothing", `{}`, UndefinedOrigin},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stubExif(t, tc.doc, nil)
			md, err := quietExtractor().Extract("photo.jpg", FieldOrigin)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if md.Origin != tc.want {
				t.Errorf("Origin = %q, want %q", md.Origin, tc.want)
			}
		})
	}
}

func TestExtractFromRealJPEG(t *testing.T) {
	dir := t.TempDir()
	path := imagetest.WriteFile(t, dir, "shot.jpg", imagetest.JPEG(t, 32, 24,
		imagetest.Tag{Name: "DateTime", Value: "2020:05:03 10:00:00"},
		imagetest.Tag{Name: "Model", Value: "Canon EOS"},
		imagetest.Tag{Name: "Software", Value: "1.0.2"},
	))

	md, err := quietExtractor().Extract(path, FieldDate|FieldOrigin|FieldSize)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if md.Date != "2020:05:03 10:00:00" {
		t.Errorf("Date = %q", md.Date)
	}
	if md.Origin != "Canon EOS" {
		t.Errorf("Origin = %q, want Canon EOS", md.Origin)
	}
	if md.Width != 32 || md.Height != 24 {
		t.Errorf("dimensions = %dx%d, want 32x24", md.Width, md.Height)
	}
}

func TestExtractDateFromSubIfds(t *testing.T) {
	stubChangeTime(t, time.Date(2019, 1, 15, 8, 30, 0, 0, time.Local))

	cases := []struct {
		name string
		tags []imagetest.Tag
		want string
	}{
		{
			"digitized in exif ifd",
			[]imagetest.Tag{{IfdPath: "IFD/Exif", Name: "DateTimeDigitized", Value: "2011:02:03 04:05:06"}},
			"2011:02:03 04:05:06",
		},
		{
			"gps date stamp",
			[]imagetest.Tag{{IfdPath: "IFD/GPSInfo", Name: "GPSDateStamp", Value: "2012:07:08"}},
			"2012:07:08",
		},
		{
			"thumbnail date ignored",
			[]imagetest.Tag{
				{IfdPath: "IFD1", Name: "DateTime", Value: "2001:01:01 00:00:00"},
				{IfdPath: "IFD/Exif", Name: "DateTimeDigitized", Value: "2011:02:03 04:05:06"},
			},
			"2011:02:03 04:05:06",
		},
		{
			"thumbnail only falls back",
			[]imagetest.Tag{
				{Name: "Model", Value: "Pixel 6"},
				{IfdPath: "IFD1", Name: "DateTime", Value: "2001:01:01 00:00:00"},
			},
			"2019:01:15",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := imagetest.WriteFile(t, t.TempDir(), "shot.jpg", imagetest.JPEG(t, 8, 8, tc.tags...))
			md, err := quietExtractor().Extract(path, FieldDate)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if md.Date != tc.want {
				t.Errorf("Date = %q, want %q", md.Date, tc.want)
			}
		})
	}
}

func TestExtractPNGWithoutMetadataFallsBack(t *testing.T) {
	stubChangeTime(t, time.Date(2019, 1, 15, 8, 30, 0, 0, time.Local))

	path := imagetest.WriteFile(t, t.TempDir(), "plain.png", imagetest.PNG(t, 4, 3))
	md, err := quietExtractor().Extract(path, FieldDate|FieldOrigin)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if md.Date != "2019:01:15" {
		t.Errorf("Date = %q, want 2019:01:15", md.Date)
	}
	if md.Origin != UndefinedOrigin {
		t.Errorf("Origin = %q, want %q", md.Origin, UndefinedOrigin)
	}
}

func TestExtractSizeOnlySkipsExif(t *testing.T) {
	original := readExifFunc
	called := false
	readExifFunc = func(string) (string, error) {
		called = true
		return "{}", nil
	}
	t.Cleanup(func() { readExifFunc = original })

	path := imagetest.WriteFile(t, t.TempDir(), "hd.png", imagetest.PNG(t, 1920, 1080))
	md, err := quietExtractor().Extract(path, FieldSize)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if called {
		t.Errorf("EXIF was read for a size-only extraction")
	}
	if md.Width != 1920 || md.Height != 1080 {
		t.Errorf("dimensions = %dx%d, want 1920x1080", md.Width, md.Height)
	}
}

func TestExtractCorruptImageIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("not really a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := quietExtractor().Extract(path, FieldSize); err == nil {
		t.Fatal("expected an error for an unreadable image header")
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2020:05:03", time.Date(2020, 5, 3, 0, 0, 0, 0, time.UTC), false},
		{"  2020:05:03  ", time.Date(2020, 5, 3, 0, 0, 0, 0, time.UTC), false},
		{"2020:05:03 10:11:12", time.Date(2020, 5, 3, 10, 11, 12, 0, time.UTC), false},
		{"2020-05-03", time.Time{}, true},
		{"2020:05:03 10", time.Time{}, true},
	}

	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q) succeeded, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): %v", tc.in, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsImage(t *testing.T) {
	cases := map[string]bool{
		"a.jpg":       true,
		"b.JPEG":      true,
		"c.png":       true,
		"d.gif":       true,
		"e.tif":       true,
		"f.tiff":      true,
		"g.txt":       false,
		"h.mp4":       false,
		"Thumbs.db":   false,
		"noextension": false,
	}
	for name, want := range cases {
		if got := IsImage(name); got != want {
			t.Errorf("IsImage(%q) = %v, want %v", name, got, want)
		}
	}
}
