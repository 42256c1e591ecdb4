package organizer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/developertyrone/sortimages/pkg/metadata"
)

// ErrNotNumeric is returned when a numeric tag does not hold an integer.
var ErrNotNumeric = errors.New("tag is not numeric")

func allowedTagRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == ' ':
		return true
	default:
		return false
	}
}

// FormatTag turns raw metadata into a directory name. Every rune outside
// [A-Za-z0-9._ ] becomes one '-'. Numeric tags are re-rendered as integers,
// which drops leading zeros.
func FormatTag(raw string, numeric bool) (string, error) {
	tag := strings.Map(func(r rune) rune {
		if allowedTagRune(r) {
			return r
		}
		return '-'
	}, strings.TrimSpace(raw))

	// "." and ".." would not nest.
	if tag != "" && strings.Trim(tag, ".") == "" {
		tag = strings.Repeat("-", len(tag))
	}

	if !numeric {
		return tag, nil
	}

	n, err := strconv.Atoi(tag)
	if err != nil {
		return "", errors.Wrapf(ErrNotNumeric, "%q", tag)
	}
	return strconv.Itoa(n), nil
}

// BuildTags derives the ordered directory segments for one image.
func BuildTags(md metadata.Metadata, spec SortSpec) ([]string, error) {
	var tags []string

	for _, c := range spec.Criteria() {
		switch c {
		case Size:
			tag, err := FormatTag(fmt.Sprintf("%dx%d", md.Width, md.Height), false)
			if err != nil {
				return nil, err
			}
			tags = append(tags, tag)

		case Date:
			dateTags, err := buildDateTags(md.Date)
			if err != nil {
				return nil, err
			}
			tags = append(tags, dateTags...)

		case Origin:
			tag, err := FormatTag(md.Origin, false)
			if err != nil {
				return nil, err
			}
			tags = append(tags, tag)
		}
	}

	return tags, nil
}

func buildDateTags(date string) ([]string, error) {
	if date == metadata.UndefinedDate {
		tag, err := FormatTag(date, false)
		if err != nil {
			return nil, err
		}
		return []string{tag}, nil
	}

	t, err := metadata.ParseDate(date)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, 3)
	for _, layout := range []string{"2006", "01", "02"} {
		tag, err := FormatTag(t.Format(layout), true)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
