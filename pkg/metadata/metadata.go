package metadata

import (
	"encoding/json"
	"image"
	_ "image/gif"  // register GIF for DecodeConfig
	_ "image/jpeg" // register JPEG for DecodeConfig
	_ "image/png"  // register PNG for DecodeConfig
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/dsoprea/go-exif/v3"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	pngstructure "github.com/dsoprea/go-png-image-structure/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	_ "golang.org/x/image/tiff" // register TIFF for DecodeConfig
)

// Field selects which pieces of metadata Extract resolves.
type Field uint8

const (
	FieldDate Field = 1 << iota
	FieldOrigin
	FieldSize
)

const (
	// UndefinedDate is emitted as a single opaque tag instead of year/month/day.
	UndefinedDate = "Undefined Date"
	// UndefinedOrigin is used when no model, software or make is recorded.
	UndefinedOrigin = "Undefined Origin"

	DateLayout     = "2006:01:02"
	DateTimeLayout = "2006:01:02 15:04:05"
)

// Date tags in priority order: creation, digitized, GPS date.
var dateTags = []string{"DateTime", "DateTimeDigitized", "GPSDateStamp"}

// Only the primary image directories are considered; IFD1 describes the thumbnail.
var exifIfds = map[string]bool{
	"IFD":         true,
	"IFD/Exif":    true,
	"IFD/GPSInfo": true,
}

var nonAlpha = regexp.MustCompile(`[^a-zA-Z]+`)

// --- Overridable readers (used for testing) ---

var (
	readExifFunc   = defaultReadExif
	changeTimeFunc = defaultChangeTime
)

// Metadata is the subset of image metadata used to derive tags. Fields not
// requested from Extract are left zero.
type Metadata struct {
	// Date is the raw date string ("YYYY:MM:DD" or "YYYY:MM:DD HH:MM:SS") or UndefinedDate.
	Date string
	// Origin is the composed device/software label, not yet sanitized.
	Origin string
	Width  int
	Height int
}

// Extractor reads capture date, origin and dimensions from image files.
type Extractor struct {
	Log logrus.FieldLogger
}

// NewExtractor returns an Extractor logging tolerated failures to log.
func NewExtractor(log logrus.FieldLogger) *Extractor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Extractor{Log: log}
}

// Extract resolves the requested fields for the image at path. Missing EXIF
// data is tolerated; unreadable image headers and stat failures are not.
func (e *Extractor) Extract(path string, fields Field) (Metadata, error) {
	var md Metadata

	if fields&FieldSize != 0 {
		w, h, err := Dimensions(path)
		if err != nil {
			return md, err
		}
		md.Width, md.Height = w, h
	}

	if fields&(FieldDate|FieldOrigin) == 0 {
		return md, nil
	}

	doc, err := readExifFunc(path)
	if err != nil {
		e.Log.WithError(err).WithField("path", path).Debug("no usable EXIF, treating as missing")
		doc = "{}"
	}

	if fields&FieldDate != 0 {
		date, err := resolveDate(path, doc)
		if err != nil {
			return md, err
		}
		md.Date = date
	}
	if fields&FieldOrigin != 0 {
		md.Origin = resolveOrigin(doc)
	}
	return md, nil
}

// Dimensions reads the pixel width and height from the image header.
func Dimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "read dimensions of %s", path)
	}
	return cfg.Width, cfg.Height, nil
}

// ParseDate parses a resolved date string. Strings longer than ten characters
// carry a time of day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layout := DateLayout
	if len(s) > len(DateLayout) {
		layout = DateTimeLayout
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse date %q", s)
	}
	return t, nil
}

func resolveDate(path, doc string) (string, error) {
	for _, tag := range dateTags {
		v := strings.TrimSpace(gjson.Get(doc, tag).String())
		if usableDate(v) {
			return v, nil
		}
	}

	changed, err := changeTimeFunc(path)
	if err != nil {
		return "", errors.Wrapf(err, "stat %s", path)
	}
	return changed.Local().Format(DateLayout), nil
}

func usableDate(v string) bool {
	if v == "" || strings.EqualFold(v, "undefined") {
		return false
	}
	// Cameras without a clock write 0000:00:00 00:00:00.
	return strings.Trim(v, "0: ") != ""
}

func resolveOrigin(doc string) string {
	model := strings.TrimSpace(gjson.Get(doc, "Model").String())
	software := strings.TrimSpace(gjson.Get(doc, "Software").String())
	maker := strings.TrimSpace(gjson.Get(doc, "Make").String())

	if versionOnly(software) {
		software = ""
	}

	switch {
	case model != "" && software != "":
		return model + " - " + software
	case model != "":
		return model
	case software != "":
		return software
	case maker != "":
		return maker
	default:
		return UndefinedOrigin
	}
}

// versionOnly reports whether a software tag carries no letters once the
// word "Camera" is removed, e.g. "1.0.2".
func versionOnly(software string) bool {
	return nonAlpha.ReplaceAllString(strings.ReplaceAll(software, "Camera", ""), "") == ""
}

// defaultReadExif returns the primary EXIF tags of path as a flat JSON object
// keyed by tag name.
func defaultReadExif(path string) (string, error) {
	raw, err := rawExif(path)
	if err != nil {
		return "", err
	}

	flat, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return "", errors.Wrapf(err, "decode EXIF of %s", path)
	}

	tags := make(map[string]string)
	for _, item := range flat {
		if !exifIfds[item.IfdPath] {
			continue
		}
		if _, seen := tags[item.TagName]; seen {
			continue
		}
		tags[item.TagName] = item.FormattedFirst
	}

	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func rawExif(path string) ([]byte, error) {
	switch ContentType(path) {
	case TypeJPEG:
		mc, err := jpegstructure.NewJpegMediaParser().ParseFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "parse JPEG %s", path)
		}
		_, raw, err := mc.Exif()
		return raw, err
	case TypePNG:
		mc, err := pngstructure.NewPngMediaParser().ParseFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "parse PNG %s", path)
		}
		_, raw, err := mc.Exif()
		return raw, err
	default:
		return exif.SearchFileAndExtractExif(path)
	}
}

func defaultChangeTime(path string) (time.Time, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	if ts.HasChangeTime() {
		return ts.ChangeTime(), nil
	}
	return ts.ModTime(), nil
}
