package metadata

import (
	"mime"
	"path/filepath"
	"strings"
)

// Content types the sorter accepts. Everything else is skipped silently.
const (
	TypePNG  = "image/png"
	TypeGIF  = "image/gif"
	TypeJPEG = "image/jpeg"
	TypeTIFF = "image/tiff"
)

func init() {
	// The builtin table has no TIFF entry and the host mime.types files vary,
	// so pin the extensions we care about.
	for ext, typ := range map[string]string{
		".tif":  TypeTIFF,
		".tiff": TypeTIFF,
		".jpe":  TypeJPEG,
		".jpg":  TypeJPEG,
		".jpeg": TypeJPEG,
		".png":  TypePNG,
		".gif":  TypeGIF,
	} {
		_ = mime.AddExtensionType(ext, typ)
	}
}

// ContentType guesses the content type of path from its extension.
// Parameters such as charset are stripped.
func ContentType(path string) string {
	typ := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.IndexByte(typ, ';'); i >= 0 {
		typ = typ[:i]
	}
	return strings.TrimSpace(typ)
}

// IsImage reports whether path looks like a supported raster image.
func IsImage(path string) bool {
	switch ContentType(path) {
	case TypePNG, TypeGIF, TypeJPEG, TypeTIFF:
		return true
	default:
		return false
	}
}
