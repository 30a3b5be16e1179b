package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Volume describes one bound volume of debates as listed in the volume index
type Volume struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Retrieved string `json:"retrieved"`
	Period    string `json:"period"`
	Session   string `json:"session,omitempty"`
	Processed bool   `json:"processed"`
}

// Number returns the numeric volume identifier, or false for named volumes
// such as appendices
func (v Volume) Number() (int, bool) {
	if v.Name == "" {
		return 0, false
	}
	for _, r := range v.Name {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(v.Name)
	if err != nil {
		return 0, false
	}
	return n, true
}

// VolumeFile pairs a volume with the CSV file holding its pages
type VolumeFile struct {
	Volume Volume
	Path   string
}

// Page is one scanned page as read from a volume CSV
type Page struct {
	URL       string
	Number    string
	Text      string
	Retrieved string
	Row       int // 1-based data row in the source file
}

// IsFrontMatter reports whether the page is a cover or a roman-numbered
// preface page
func (p Page) IsFrontMatter() bool {
	if strings.TrimSpace(p.Number) == "1" {
		return true
	}
	return strings.HasSuffix(p.URL, "c") ||
		strings.HasSuffix(p.URL, "l") ||
		strings.HasSuffix(p.URL, "x") ||
		strings.HasSuffix(p.URL, "v") ||
		strings.HasSuffix(p.URL, "i")
}

// HasLetters reports whether the page text contains any ASCII letter
func (p Page) HasLetters() bool {
	for _, r := range p.Text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// ErrMalformedPage marks a page row that is missing required fields
var ErrMalformedPage = errors.New("malformed page row")

// PageError reports which row and field of a volume file was malformed
type PageError struct {
	Row   int
	Field string
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%v: row %d: missing %s", ErrMalformedPage, e.Row, e.Field)
}

// Unwrap lets errors.Is match ErrMalformedPage
func (e *PageError) Unwrap() error { return ErrMalformedPage }
