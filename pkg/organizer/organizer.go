package organizer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/developertyrone/sortimages/pkg/metadata"
)

// Extractor reads the metadata needed for a set of fields.
type Extractor interface {
	Extract(path string, fields metadata.Field) (metadata.Metadata, error)
}

// Reporter receives user-facing progress lines.
type Reporter interface {
	Header(lines ...string)
	Item(lines ...string)
}

// ImageRecord is one image and the tags deciding its destination. Path is
// stale once the record has been applied.
type ImageRecord struct {
	Path string
	Tags []string
}

// Destination counts the images moved into one directory.
type Destination struct {
	Dir   string
	Count int
}

// Result summarizes a run.
type Result struct {
	Sorted       int
	Skipped      int
	DirsCreated  int
	Destinations []Destination
	Cleanup      CleanupReport
	Elapsed      time.Duration
}

// Organizer holds the configuration for sorting one directory tree.
type Organizer struct {
	Root      string
	Spec      SortSpec
	Collision CollisionPolicy
	DryRun    bool
	JunkFiles []string

	extractor Extractor
	out       Reporter
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewOrganizer creates an Organizer with the overwrite policy and the default
// junk file list.
func NewOrganizer(root string, spec SortSpec, extractor Extractor, out Reporter, log logrus.FieldLogger) *Organizer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Organizer{
		Root:      root,
		Spec:      spec,
		Collision: Overwrite,
		JunkFiles: DefaultJunkFiles,
		extractor: extractor,
		out:       out,
		log:       log,
		now:       time.Now,
	}
}

// Run reads every image, moves it to its tagged directory, prints a summary
// and cleans up. The first metadata or filesystem error aborts the run.
func (o *Organizer) Run() (Result, error) {
	start := o.now()

	records, err := o.Plan()
	if err != nil {
		return Result{}, err
	}

	result, err := o.Apply(records)
	if err != nil {
		return result, err
	}
	result.Elapsed = o.now().Sub(start)
	o.summarize(result)

	if o.DryRun {
		return result, nil
	}

	result.Cleanup, err = Cleanup(o.Root, o.JunkFiles, o.log)
	if err != nil {
		return result, err
	}
	o.log.WithFields(logrus.Fields{
		"files": len(result.Cleanup.FilesRemoved),
		"dirs":  len(result.Cleanup.DirsRemoved),
	}).Debug("cleanup finished")

	trackTime(o.log, start, o.now(), "sort")
	return result, nil
}

// Plan lists the files under Root and derives the tags of every image.
// Nothing is moved.
func (o *Organizer) Plan() ([]ImageRecord, error) {
	files, err := ListFiles(o.Root, o.Spec.Recursive)
	if err != nil {
		return nil, err
	}

	o.out.Header("Reading " + absPath(o.Root))

	fields := o.Spec.Fields()
	records := make([]ImageRecord, 0, len(files))
	for i, file := range files {
		o.out.Item(fmt.Sprintf("[%s] Reading %s", percent(i+1, len(files)), absPath(file)))

		if !metadata.IsImage(file) {
			o.log.WithField("path", file).Debug("skipping non-image")
			continue
		}

		md, err := o.extractor.Extract(file, fields)
		if err != nil {
			return nil, err
		}
		tags, err := BuildTags(md, o.Spec)
		if err != nil {
			return nil, errors.Wrapf(err, "derive tags for %s", file)
		}
		records = append(records, ImageRecord{Path: file, Tags: tags})
	}
	return records, nil
}

// Apply moves each record into Root/<tags...>, creating directories on demand.
func (o *Organizer) Apply(records []ImageRecord) (Result, error) {
	var result Result
	r := newRouter(o.Root, o.DryRun, o.log)
	counts := make(map[string]int)

	o.out.Header(fmt.Sprintf("Sorting %d images", len(records)))
	for i, rec := range records {
		dir, err := r.Route(rec.Tags)
		if err != nil {
			return result, err
		}

		dst := filepath.Join(dir, filepath.Base(rec.Path))
		note := ""
		if !o.DryRun {
			var moved bool
			dst, moved, err = move(rec.Path, dir, o.Collision)
			if err != nil {
				result.DirsCreated = r.created
				return result, err
			}
			if !moved && dst != filepath.Clean(rec.Path) {
				note = " (skipped, destination exists)"
				result.Skipped++
			}
		}

		o.out.Item(fmt.Sprintf("[%s] %s => %s%s", percent(i+1, len(records)), rec.Path, dst, note))
		if note == "" {
			counts[dir]++
			result.Sorted++
		}
	}

	result.DirsCreated = r.created
	result.Destinations = destinations(counts)
	return result, nil
}

func (o *Organizer) summarize(result Result) {
	o.out.Header(fmt.Sprintf("Summary: %d images sorted in %s", result.Sorted, humanDuration(result.Elapsed)))

	lines := make([]string, 0, len(result.Destinations)+1)
	for _, d := range result.Destinations {
		lines = append(lines, fmt.Sprintf("%d images moved to %s", d.Count, d.Dir))
	}
	if result.Skipped > 0 {
		lines = append(lines, fmt.Sprintf("%d images skipped because the destination exists", result.Skipped))
	}
	o.out.Item(append(lines, "")...)
}

// destinations orders directories by image count, most populated first.
func destinations(counts map[string]int) []Destination {
	out := make([]Destination, 0, len(counts))
	for dir, n := range counts {
		out = append(out, Destination{Dir: dir, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Dir < out[j].Dir
	})
	return out
}

// percent formats number/total as a whole percentage, e.g. 25%.
func percent(number, total int) string {
	if total == 0 {
		return "100%"
	}
	return fmt.Sprintf("%.0f%%", float64(number)*100/float64(total))
}

func humanDuration(d time.Duration) string {
	if d < time.Second {
		return "less than a second"
	}
	var zero time.Time
	return strings.TrimSpace(humanize.RelTime(zero, zero.Add(d), "", ""))
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// trackTime logs the elapsed time between start and end.
func trackTime(log logrus.FieldLogger, start, end time.Time, name string) {
	log.Debugf("%s took %s", name, end.Sub(start))
}
