package mdconv

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// langMap maps fence language names to the names the remote code macro
// understands.
var langMap = map[string]string{
	"js":     "javascript",
	"ts":     "typescript",
	"py":     "python",
	"rb":     "ruby",
	"sh":     "bash",
	"shell":  "bash",
	"zsh":    "bash",
	"yml":    "yaml",
	"cs":     "c#",
	"csharp": "c#",
	"cpp":    "c++",
	"xml":    "html/xml",
	"html":   "html/xml",
	"ps1":    "powershell",
	"psm1":   "powershell",
}

// langMapReverse maps code macro language names back to fence names.
var langMapReverse = map[string]string{
	"html/xml": "xml",
	"c#":       "csharp",
	"c++":      "cpp",
	"none":     "",
}

// renderer is the shared markdown engine. Unsafe rendering is required
// so inline HTML and the TOC placeholder comment pass through.
var renderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		goldmarkhtml.WithXHTML(),
		goldmarkhtml.WithUnsafe(),
	),
)

const tocPlaceholder = "<!--TOC_PLACEHOLDER-->"

var (
	tocLine         = regexp.MustCompile(`(?m)^\[TOC\][ \t]*$`)
	preCodeBlock    = regexp.MustCompile(`(?s)<pre><code(?:\s+class="language-([^"]*)")?>(.*?)</code></pre>`)
	tocPlaceholderP = regexp.MustCompile(`(<p>)?` + tocPlaceholder + `(</p>)?`)
	imgTag          = regexp.MustCompile(`<img\s+([^>]*?)/?>`)
	imgAltAttr      = regexp.MustCompile(`alt="([^"]*)"`)
	imgSrcAttr      = regexp.MustCompile(`src="attachment:([^"]*)"`)
)

// MarkdownToStorage converts markdown to the wiki's XHTML storage
// format. Local image references become attachment macros keyed by file
// name, fenced code blocks become code macros, and a [TOC] line on its
// own becomes the table-of-contents macro.
func MarkdownToStorage(md string) (string, error) {
	md = imagesToAttachments(md)
	md = tocLine.ReplaceAllString(md, tocPlaceholder)

	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render storage format: %w", err)
	}
	out := buf.String()

	out = preCodeBlock.ReplaceAllStringFunc(out, codeBlockToMacro)
	out = tocPlaceholderP.ReplaceAllString(out, `<ac:structured-macro ac:name="toc"/>`)
	out = imgTag.ReplaceAllStringFunc(out, imgToAttachmentMacro)
	return out, nil
}

// codeBlockToMacro rewrites a rendered <pre><code> block into the code
// macro. The code body was HTML-escaped by the renderer, so entities are
// unescaped back into the CDATA section.
func codeBlockToMacro(match string) string {
	m := preCodeBlock.FindStringSubmatch(match)
	lang, code := m[1], m[2]

	if lang == "" {
		lang = "none"
	} else {
		lang = strings.ToLower(lang)
		if mapped, ok := langMap[lang]; ok {
			lang = mapped
		}
	}

	// &amp; must be unescaped last.
	code = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#34;", `"`,
		"&#39;", "'",
	).Replace(code)
	code = strings.ReplaceAll(code, "&amp;", "&")

	return `<ac:structured-macro ac:name="code">` +
		`<ac:parameter ac:name="language">` + lang + `</ac:parameter>` +
		`<ac:plain-text-body><![CDATA[` + code + `]]></ac:plain-text-body>` +
		`</ac:structured-macro>`
}

// imgToAttachmentMacro rewrites an <img> tag whose source is an
// attachment reference into the wiki's image macro. Other images pass
// through untouched.
func imgToAttachmentMacro(match string) string {
	attrs := imgTag.FindStringSubmatch(match)[1]
	src := imgSrcAttr.FindStringSubmatch(attrs)
	if src == nil {
		return match
	}
	altAttr := ""
	if alt := imgAltAttr.FindStringSubmatch(attrs); alt != nil && alt[1] != "" {
		altAttr = ` ac:alt="` + alt[1] + `"`
	}
	return `<ac:image` + altAttr + `><ri:attachment ri:filename="` + src[1] + `"/></ac:image>`
}
