package file

import (
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

// textFormat turns the raw bytes of a single-document file into a title
// and plain text.
type textFormat struct {
	category string
	title    func(content string) string
	strip    func(content string) string
}

var textFormats = map[string]textFormat{
	".txt":      {category: "Text", title: noTitle, strip: strings.TrimSpace},
	".md":       {category: "Markdown", title: markdownTitle, strip: stripMarkdown},
	".markdown": {category: "Markdown", title: markdownTitle, strip: stripMarkdown},
	".html":     {category: "HTML", title: htmlTitle, strip: stripHTML},
	".htm":      {category: "HTML", title: htmlTitle, strip: stripHTML},
}

// decodeText reads a whole file as one document. The ID is derived from the
// absolute path so re-ingesting the same file replaces its entry.
func decodeText(path string, data []byte, format textFormat) []domain.Document {
	content := string(data)

	title := format.title(content)
	if title == "" {
		title = titleFromFilename(path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return []domain.Document{{
		ID:       uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs)).String(),
		Title:    title,
		Content:  format.strip(content),
		Category: format.category,
		Source:   filepath.Base(path),
	}}
}

func noTitle(string) string { return "" }

// titleFromFilename turns "getting_started-guide.md" into "getting started guide".
func titleFromFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ReplaceAll(name, "-", " ")
}

func markdownTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}

var (
	mdCodeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	mdInlineCode   = regexp.MustCompile("`([^`]+)`")
	mdImage        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	mdLink         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdHeading      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdEmphasis     = regexp.MustCompile(`(\*\*|__|\*)`)
	mdBlockquote   = regexp.MustCompile(`(?m)^>\s*`)
	mdRule         = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	mdListMarker   = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	mdNumberedList = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`)
	multiNewlines  = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown keeps the prose of a markdown file. Code blocks are dropped;
// inline code keeps its text.
func stripMarkdown(content string) string {
	content = mdCodeBlock.ReplaceAllString(content, "")
	content = mdInlineCode.ReplaceAllString(content, "$1")
	content = mdImage.ReplaceAllString(content, "")
	content = mdLink.ReplaceAllString(content, "$1")
	content = mdHeading.ReplaceAllString(content, "")
	content = mdRule.ReplaceAllString(content, "")
	content = mdBlockquote.ReplaceAllString(content, "")
	content = mdListMarker.ReplaceAllString(content, "")
	content = mdNumberedList.ReplaceAllString(content, "")
	content = mdEmphasis.ReplaceAllString(content, "")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

var (
	htmlTitleTag = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	htmlDropped  = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
		regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`),
		regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`),
		regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`),
	}
	htmlComments   = regexp.MustCompile(`(?s)<!--.*?-->`)
	htmlBlockOpen  = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	htmlBlockClose = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	htmlBreak      = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	htmlTag        = regexp.MustCompile(`<[^>]+>`)
	multiSpaces    = regexp.MustCompile(`[ \t]+`)
)

func htmlTitle(content string) string {
	m := htmlTitleTag.FindStringSubmatch(content)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(m[1]))
}

// stripHTML returns the visible text of a page, one block per line.
func stripHTML(content string) string {
	for _, re := range htmlDropped {
		content = re.ReplaceAllString(content, "")
	}
	content = htmlComments.ReplaceAllString(content, "")
	content = htmlBlockOpen.ReplaceAllString(content, "\n")
	content = htmlBlockClose.ReplaceAllString(content, "\n")
	content = htmlBreak.ReplaceAllString(content, "\n")
	content = htmlTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
