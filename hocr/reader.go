// Package hocr parses hOCR output, the HTML-based format emitted by
// Tesseract and other OCR engines, into positioned text blocks for the
// linker. hOCR coordinates are already top-left origin.
package hocr

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/doclink/model"
)

// Page is one hOCR page: its pixel dimensions and the text lines on it.
type Page struct {
	Index  int
	Width  float64
	Height float64
	Blocks []model.TextBlock
}

// lineClasses are the hOCR element classes treated as one text block.
var lineClasses = map[string]bool{
	"ocr_line":      true,
	"ocr_caption":   true,
	"ocr_header":    true,
	"ocr_textfloat": true,
}

// Reader provides access to parsed hOCR content.
type Reader struct {
	pages []Page
}

// Open opens an hOCR file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenReader parses hOCR from an io.Reader.
func OpenReader(r io.Reader) (*Reader, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing hOCR: %w", err)
	}

	reader := &Reader{}
	reader.extractPages(doc)
	return reader, nil
}

// Pages returns all parsed pages in document order.
func (r *Reader) Pages() []Page {
	return r.pages
}

// extractPages walks the DOM collecting ocr_page elements.
func (r *Reader) extractPages(n *html.Node) {
	if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
		page := Page{Index: len(r.pages)}
		if box, ok := parseBBox(getAttr(n, "title")); ok {
			page.Width = box.Width
			page.Height = box.Height
		}
		r.extractLines(n, &page)
		r.pages = append(r.pages, page)
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.extractPages(c)
	}
}

// extractLines walks one page's subtree collecting text-line elements.
func (r *Reader) extractLines(n *html.Node, page *Page) {
	if n.Type == html.ElementNode && isLine(n) {
		if block, ok := lineBlock(n, page.Index); ok {
			page.Blocks = append(page.Blocks, block)
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.extractLines(c, page)
	}
}

// lineBlock converts one line element into a text block. Word confidence
// (x_wconf, 0-100) is averaged across the line's words; lines without
// word confidence default to 1.0.
func lineBlock(n *html.Node, pageIdx int) (model.TextBlock, bool) {
	box, ok := parseBBox(getAttr(n, "title"))
	if !ok {
		return model.TextBlock{}, false
	}

	var words []string
	var confSum float64
	var confCount int
	collectWords(n, &words, &confSum, &confCount)

	text := strings.Join(words, " ")
	if text == "" {
		text = strings.TrimSpace(textContent(n))
	}
	if text == "" {
		return model.TextBlock{}, false
	}

	confidence := 1.0
	if confCount > 0 {
		confidence = confSum / float64(confCount) / 100
	}

	return model.TextBlock{
		Text:       text,
		BBox:       box,
		Confidence: confidence,
		PageIndex:  pageIdx,
	}, true
}

// collectWords gathers ocrx_word texts and confidences under a node.
func collectWords(n *html.Node, words *[]string, confSum *float64, confCount *int) {
	if n.Type == html.ElementNode && hasClass(n, "ocrx_word") {
		word := strings.TrimSpace(textContent(n))
		if word != "" {
			*words = append(*words, word)
			if conf, ok := parseWConf(getAttr(n, "title")); ok {
				*confSum += conf
				*confCount++
			}
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectWords(c, words, confSum, confCount)
	}
}

// parseBBox extracts the "bbox x0 y0 x1 y1" property from an hOCR title
// attribute.
func parseBBox(title string) (model.BBox, bool) {
	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(strings.TrimSpace(prop))
		if len(fields) != 5 || fields[0] != "bbox" {
			continue
		}
		coords := make([]float64, 4)
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return model.BBox{}, false
			}
			coords[i] = v
		}
		if coords[2] < coords[0] || coords[3] < coords[1] {
			return model.BBox{}, false
		}
		return model.NewBBox(coords[0], coords[1], coords[2]-coords[0], coords[3]-coords[1]), true
	}
	return model.BBox{}, false
}

// parseWConf extracts the "x_wconf N" property from an hOCR title
// attribute.
func parseWConf(title string) (float64, bool) {
	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(strings.TrimSpace(prop))
		if len(fields) != 2 || fields[0] != "x_wconf" {
			continue
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// getAttr returns the value of an attribute on a node, or empty string if not found.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// getClass returns the node's class attribute.
func getClass(n *html.Node) string {
	return getAttr(n, "class")
}

// hasClass reports whether the node carries the given class.
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getClass(n)) {
		if c == class {
			return true
		}
	}
	return false
}

// isLine reports whether the node is an hOCR text-line element.
func isLine(n *html.Node) bool {
	for _, c := range strings.Fields(getClass(n)) {
		if lineClasses[c] {
			return true
		}
	}
	return false
}

// textContent returns the concatenated text of a node's subtree.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
