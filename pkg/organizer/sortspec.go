package organizer

import (
	"fmt"
	"strings"

	"github.com/developertyrone/sortimages/pkg/metadata"
)

// Criterion is one grouping axis.
type Criterion int

const (
	Date Criterion = iota + 1
	Origin
	Size
)

// declaredOrder is the fixed evaluation order for secondary criteria.
var declaredOrder = []Criterion{Date, Origin, Size}

func (c Criterion) String() string {
	switch c {
	case Date:
		return "date"
	case Origin:
		return "origin"
	case Size:
		return "size"
	default:
		return fmt.Sprintf("Criterion(%d)", int(c))
	}
}

func (c Criterion) field() metadata.Field {
	switch c {
	case Date:
		return metadata.FieldDate
	case Origin:
		return metadata.FieldOrigin
	case Size:
		return metadata.FieldSize
	default:
		return 0
	}
}

// ParseCriterion maps "date", "origin" or "size" to a Criterion.
func ParseCriterion(s string) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date":
		return Date, nil
	case "origin":
		return Origin, nil
	case "size":
		return Size, nil
	default:
		return 0, fmt.Errorf("unknown sort criterion %q", s)
	}
}

// SortSpec is the immutable description of how images are grouped.
type SortSpec struct {
	Primary   Criterion
	Secondary []Criterion
	Recursive bool
}

// NewSortSpec validates primary and orders secondary as Date, Origin, Size
// whatever order they were given in. A secondary equal to primary is kept.
func NewSortSpec(primary Criterion, secondary []Criterion, recursive bool) (SortSpec, error) {
	if primary.field() == 0 {
		return SortSpec{}, fmt.Errorf("invalid primary criterion %v", primary)
	}

	want := make(map[Criterion]bool, len(secondary))
	for _, c := range secondary {
		if c.field() == 0 {
			return SortSpec{}, fmt.Errorf("invalid secondary criterion %v", c)
		}
		want[c] = true
	}

	ordered := make([]Criterion, 0, len(want))
	for _, c := range declaredOrder {
		if want[c] {
			ordered = append(ordered, c)
		}
	}

	return SortSpec{Primary: primary, Secondary: ordered, Recursive: recursive}, nil
}

// Criteria returns the primary followed by the secondary criteria.
func (s SortSpec) Criteria() []Criterion {
	out := make([]Criterion, 0, 1+len(s.Secondary))
	out = append(out, s.Primary)
	return append(out, s.Secondary...)
}

// Fields is the metadata needed to evaluate every criterion.
func (s SortSpec) Fields() metadata.Field {
	var f metadata.Field
	for _, c := range s.Criteria() {
		f |= c.field()
	}
	return f
}
