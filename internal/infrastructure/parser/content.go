package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/text/unicode/norm"

	"NewsCredibility/internal/ports"
)

var (
	tagExpr        = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)
	documentExpr   = regexp.MustCompile(`(?i)<(html|body|article)[\s>]`)
	whitespaceExpr = regexp.MustCompile(`[ \t\r\n\f\v]+`)
)

// HTMLNormalizer turns stored article bodies, which may be raw HTML, into
// NFC-normalised plain text for the lexical analysers.
type HTMLNormalizer struct{}

var _ ports.TextNormalizer = HTMLNormalizer{}

// Normalize extracts readable text from HTML bodies and collapses whitespace.
// Whole pages go through readability first so navigation and footers are
// dropped; fragments and pages readability cannot parse use paragraph text.
// Plain text only gets Unicode normalisation and whitespace cleanup.
func (HTMLNormalizer) Normalize(raw string) string {
	text := raw
	if tagExpr.MatchString(raw) {
		if extracted, ok := extractMainContent(raw); ok {
			text = extracted
		} else if extracted, ok := extractText(raw); ok {
			text = extracted
		}
	}
	text = norm.NFC.String(text)
	return strings.TrimSpace(whitespaceExpr.ReplaceAllString(text, " "))
}

func extractMainContent(html string) (string, bool) {
	if !documentExpr.MatchString(html) {
		return "", false
	}
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return "", false
	}
	text := strings.TrimSpace(article.TextContent)
	return text, text != ""
}

// extractText prefers <p> elements and falls back to the whole body.
func extractText(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	doc.Find("script, style, noscript").Remove()

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	})
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, " "), true
	}

	return doc.Find("body").Text(), true
}
