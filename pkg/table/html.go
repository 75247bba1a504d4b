package table

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLProvider reads rows from captured page markup.
type HTMLProvider struct {
	doc *goquery.Document
}

// NewHTMLProvider parses markup from r.
func NewHTMLProvider(r io.Reader) (*HTMLProvider, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse table markup: %w", err)
	}
	return &HTMLProvider{doc: doc}, nil
}

// NewHTMLProviderFromString parses markup held in memory.
func NewHTMLProviderFromString(html string) (*HTMLProvider, error) {
	return NewHTMLProvider(strings.NewReader(html))
}

// Rows returns the trimmed td and th texts of each element matching selector.
func (p *HTMLProvider) Rows(ctx context.Context, selector string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows [][]string
	p.doc.Find(selector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th").Map(func(_ int, cell *goquery.Selection) string {
			return strings.TrimSpace(cell.Text())
		})
		rows = append(rows, cells)
	})
	return rows, nil
}

// StaticProvider serves rows already split into cells.
type StaticProvider [][]string

// Rows implements Provider; the selector is ignored.
func (p StaticProvider) Rows(ctx context.Context, _ string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
