// Package gallery holds the ordered list of media records shown by the
// portfolio's gallery and the rules for previewing and viewing them.
package gallery

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed media.yaml
var defaultManifest []byte

// Kind is the media type of a record.
type Kind string

const (
	Image Kind = "image"
	Video Kind = "video"
	PDF   Kind = "pdf"
)

// ErrInvalidKind is returned for records whose type is not image, video or pdf.
var ErrInvalidKind = errors.New("invalid media kind")

// FallbackIcon is the document icon shown when a pdf has no preview image.
const FallbackIcon = "data:image/svg+xml;base64,PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciIHZpZXdCb3g9IjAgMCAyNCAyNCIgZmlsbD0ibm9uZSIgc3Ryb2tlPSIjZmZmZmZmIiBzdHJva2Utd2lkdGg9IjIiIHN0cm9rZS1saW5lY2FwPSJyb3VuZCIgc3Ryb2tlLWxpbmVqb2luPSJyb3VuZCI+PHBhdGggZD0iTTE0IDJINmEyIDIgMCAwIDAtMiAydjE2YTIgMiAwIDAgMCAyIDJoMTJhMiAyIDAgMCAwIDItMnYtOWwtNS01eiIvPjxwb2x5bGluZSBwb2ludHM9IjE0IDIgMTQgOSAyMCA5Ii8+PC9zdmc+"

// Record is one gallery entry.
type Record struct {
	File        string `yaml:"file" json:"file"`
	Title       string `yaml:"title" json:"title"`
	Category    string `yaml:"category" json:"category"`
	Description string `yaml:"description" json:"description"`
	Kind        Kind   `yaml:"type" json:"type"`
}

// Viewer describes the element the modal viewer mounts for a record.
type Viewer struct {
	Element  string `json:"element"`
	Src      string `json:"src"`
	Type     string `json:"type,omitempty"`
	Controls bool   `json:"controls,omitempty"`
	Autoplay bool   `json:"autoplay,omitempty"`
}

// Validate checks that the record can be rendered.
func (r Record) Validate() error {
	if r.File == "" {
		return errors.New("record has no file")
	}
	if r.Title == "" {
		return fmt.Errorf("record %q has no title", r.File)
	}
	switch r.Kind {
	case Image, Video, PDF:
		return nil
	}
	return fmt.Errorf("%w: %q for %q", ErrInvalidKind, r.Kind, r.File)
}

// Thumbnail is the source used for the grid tile. A pdf is previewed by the
// image of the same name with a .jpg extension.
func (r Record) Thumbnail() string {
	if r.Kind == PDF {
		return strings.Replace(r.File, ".pdf", ".jpg", 1)
	}
	return r.File
}

// Viewer returns the modal descriptor for r.
func (r Record) Viewer() Viewer {
	switch r.Kind {
	case Video:
		return Viewer{Element: "video", Src: r.File, Controls: true, Autoplay: true}
	case PDF:
		return Viewer{Element: "embed", Src: r.File, Type: "application/pdf"}
	default:
		return Viewer{Element: "img", Src: r.File}
	}
}

// Library is an ordered, read-only set of records.
type Library struct {
	records []Record
}

// Default returns the library shipped with the binary.
func Default() (*Library, error) {
	return Parse(defaultManifest)
}

// Load reads a YAML manifest from disk.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML list of records and validates each one.
func Parse(data []byte) (*Library, error) {
	var records []Record
	if err := yaml.UnmarshalStrict(data, &records); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return &Library{records: records}, nil
}

// Len returns the number of records.
func (l *Library) Len() int { return len(l.records) }

// All returns a copy of every record in order.
func (l *Library) All() []Record {
	return append([]Record(nil), l.records...)
}

// At returns the record at index i.
func (l *Library) At(i int) (Record, bool) {
	if i < 0 || i >= len(l.records) {
		return Record{}, false
	}
	return l.records[i], true
}

// ByCategory returns the indices of the records in category, in order.
func (l *Library) ByCategory(category string) []int {
	var out []int
	for i, r := range l.records {
		if strings.EqualFold(r.Category, category) {
			out = append(out, i)
		}
	}
	return out
}

// Categories lists the distinct categories in order of first appearance.
func (l *Library) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range l.records {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return out
}
