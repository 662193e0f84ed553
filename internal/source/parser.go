package source

import (
	"io"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"normas/internal/constants"
	"normas/internal/record"
)

// ParseOptions carries the per-run context the parser stamps onto records.
type ParseOptions struct {
	Entity       string
	LinkBase     string // scheme://host used to resolve relative hrefs
	ComponentIDs []int64
	FetchedAt    time.Time
}

// ParseListing extracts raw records from one portal listing page. Rows that
// cannot yield a title, link and creation date are skipped here; everything
// else is left for the rule-driven validator to judge.
func ParseListing(r io.Reader, opts ParseOptions) ([]record.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	tbody := findFirst(root, isElement("tbody"))
	if tbody == nil {
		return nil, nil
	}

	var docs []record.Document
	for _, row := range elements(tbody, "tr") {
		doc, ok := parseRow(row, opts)
		if !ok {
			continue
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func parseRow(row *html.Node, opts ParseOptions) (record.Document, bool) {
	fields := record.Record{
		"update_at":         record.String(opts.FetchedAt.Format(constants.DateTimeLayout)),
		"is_active":         record.Bool(true),
		"entity":            record.String(opts.Entity),
		"classification_id": record.Number(float64(constants.FixedClassificationID)),
	}

	title, link, ok := extractTitleAndLink(row, opts.LinkBase)
	if !ok {
		return record.Document{}, false
	}
	fields["title"] = record.String(title)
	fields["external_link"] = record.String(link)
	fields["gtype"] = record.String("link")

	if summary, ok := extractSummary(row); ok {
		fields["summary"] = record.String(summary)
	} else {
		fields["summary"] = record.Null()
	}

	createdAt, ok := extractCreationDate(row)
	if !ok {
		return record.Document{}, false
	}
	fields["created_at"] = record.String(createdAt)

	fields["rtype_id"] = record.Number(float64(rtypeID(title)))

	return record.Document{
		Fields:     fields,
		Components: append([]int64(nil), opts.ComponentIDs...),
	}, true
}

func extractTitleAndLink(row *html.Node, linkBase string) (string, string, bool) {
	titleCell := findFirst(row, cellWithClass("views-field-title"))
	if titleCell == nil {
		return "", "", false
	}

	anchor := findFirst(titleCell, isElement("a"))
	if anchor == nil {
		return "", "", false
	}

	title := CleanQuotes(nodeText(anchor))
	if title == "" || utf8.RuneCountInString(title) > constants.MaxFetchTitleLength {
		return "", "", false
	}

	link := attrValue(anchor, "href")
	if link == "" {
		return "", "", false
	}
	if !strings.HasPrefix(link, "http") {
		link = linkBase + link
	}

	return title, link, true
}

func extractSummary(row *html.Node) (string, bool) {
	summaryCell := findFirst(row, cellWithClass("views-field-body"))
	if summaryCell == nil {
		return "", false
	}
	summary := capitalize(CleanQuotes(nodeText(summaryCell)))
	if summary == "" {
		return "", false
	}
	return summary, true
}

func extractCreationDate(row *html.Node) (string, bool) {
	dateCell := findFirst(row, cellWithClass("views-field-field-fecha--1"))
	if dateCell == nil {
		return "", false
	}

	var raw string
	if span := findFirst(dateCell, withClass("span", "date-display-single")); span != nil {
		raw = attrValue(span, "content")
		if raw == "" {
			raw = nodeText(span)
		}
	} else {
		raw = nodeText(dateCell)
	}

	return normalizeDate(raw)
}

// normalizeDate reduces the portal's date formats to yyyy-mm-dd. Timestamps
// are cut at the date, dd/mm/yyyy is rewritten. Anything blank is unusable.
func normalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)

	switch {
	case strings.Contains(raw, "T"):
		raw = strings.SplitN(raw, "T", 2)[0]
	case strings.Contains(raw, "/"):
		parts := strings.Split(raw, "/")
		if len(parts) == 3 {
			day, month, year := parts[0], parts[1], parts[2]
			raw = year + "-" + pad2(month) + "-" + pad2(day)
		}
	}

	if raw == "" {
		return "", false
	}
	return raw, true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func rtypeID(title string) int64 {
	lower := strings.ToLower(title)
	for _, kw := range constants.RTypeKeywords {
		if strings.Contains(lower, kw.Keyword) {
			return kw.ID
		}
	}
	return constants.DefaultRTypeID
}

var quoteRunes = regexp.MustCompile("[\"'´`“”‘’«»„‚‹›′″]")

// CleanQuotes strips every quotation mark variant and collapses whitespace.
func CleanQuotes(text string) string {
	cleaned := quoteRunes.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(cleaned), " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

// HTML tree helpers.

func isElement(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

func cellWithClass(class string) func(*html.Node) bool {
	return withClass("td", class)
}

func withClass(tag, class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != tag {
			return false
		}
		for _, token := range strings.Fields(attrValue(n, "class")) {
			if token == class {
				return true
			}
		}
		return false
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

func elements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}
	return out
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
