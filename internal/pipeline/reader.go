package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/tautohetohe/internal/model"
	"golang.org/x/net/html"
)

// Page file columns. Older dumps spell the retrieval column "retreived".
const (
	colURL       = "url"
	colPage      = "page"
	colText      = "text"
	colRetrieved = "retrieved"
	colRetreived = "retreived"
)

// PageReader streams pages from a volume's page CSV
type PageReader struct {
	csv  *csv.Reader
	cols map[string]int
	row  int
}

// NewPageReader reads the header row and checks the required columns
func NewPageReader(r io.Reader) (*PageReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &model.PageError{Row: 0, Field: "header"}
		}
		return nil, fmt.Errorf("%w: header: %v", model.ErrMalformedPage, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		cols[strings.ToLower(name)] = i
	}
	if _, ok := cols[colRetrieved]; !ok {
		if i, ok := cols[colRetreived]; ok {
			cols[colRetrieved] = i
		}
	}
	for _, required := range []string{colURL, colPage, colText, colRetrieved} {
		if _, ok := cols[required]; !ok {
			return nil, &model.PageError{Row: 0, Field: required}
		}
	}

	return &PageReader{csv: cr, cols: cols}, nil
}

// Next returns the next page, or io.EOF after the last one. Page text has its
// HTML entities decoded.
func (pr *PageReader) Next() (model.Page, error) {
	record, err := pr.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.Page{}, io.EOF
		}
		return model.Page{}, fmt.Errorf("%w: row %d: %v", model.ErrMalformedPage, pr.row+1, err)
	}
	pr.row++

	field := func(name string) (string, bool) {
		i := pr.cols[name]
		if i >= len(record) {
			return "", false
		}
		return record[i], true
	}

	var page model.Page
	var ok bool
	if page.URL, ok = field(colURL); !ok || page.URL == "" {
		return model.Page{}, &model.PageError{Row: pr.row, Field: colURL}
	}
	if page.Number, ok = field(colPage); !ok {
		return model.Page{}, &model.PageError{Row: pr.row, Field: colPage}
	}
	if page.Text, ok = field(colText); !ok {
		return model.Page{}, &model.PageError{Row: pr.row, Field: colText}
	}
	if page.Retrieved, ok = field(colRetrieved); !ok {
		return model.Page{}, &model.PageError{Row: pr.row, Field: colRetrieved}
	}
	page.Text = html.UnescapeString(page.Text)
	page.Row = pr.row

	return page, nil
}

// Accept reports whether a page carries debate text: not the cover, not a
// roman-numbered preface page, and with at least one letter
func Accept(page model.Page) bool {
	return !page.IsFrontMatter() && page.HasLetters()
}
