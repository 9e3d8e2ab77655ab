package mdconv

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var (
	acImageMacro = regexp.MustCompile(`<ac:image(?:\s+ac:alt="([^"]*)")?[^>]*>\s*<ri:attachment\s+ri:filename="([^"]+)"[^/]*/>\s*</ac:image>`)
	acTocMacro   = regexp.MustCompile(`<ac:structured-macro[^>]*ac:name="toc"[^>]*/?>(?:</ac:structured-macro>)?`)

	acCodeMacroWithLang = regexp.MustCompile(`(?s)<ac:structured-macro[^>]*ac:name="code"[^>]*>.*?` +
		`<ac:parameter[^>]*ac:name="language"[^>]*>([^<]*)</ac:parameter>.*?` +
		`<ac:plain-text-body><!\[CDATA\[(.*?)\]\]></ac:plain-text-body>.*?` +
		`</ac:structured-macro>`)
	acCodeMacroNoLang = regexp.MustCompile(`(?s)<ac:structured-macro[^>]*ac:name="code"[^>]*>.*?` +
		`<ac:plain-text-body><!\[CDATA\[(.*?)\]\]></ac:plain-text-body>.*?` +
		`</ac:structured-macro>`)

	fencedBlock   = regexp.MustCompile("(?s)```[^\n]*\n.*?\n```")
	blankNewlines = regexp.MustCompile(`\n{3,}`)
)

// Fenced blocks are swapped out before tokenizing so raw code containing
// angle brackets is never parsed as markup. The markers are private-use
// runes that survive the tokenizer as plain text.
const (
	codeMarkOpen  = "\uE000"
	codeMarkClose = "\uE001"
)

// StorageToMarkdown converts the wiki's XHTML storage format to
// markdown. Attachment image macros become local references under
// imageDir, code macros become fenced blocks, and the TOC macro becomes
// a [TOC] line.
func StorageToMarkdown(storage, imageDir string) string {
	content := acImageMacro.ReplaceAllStringFunc(storage, func(match string) string {
		m := acImageMacro.FindStringSubmatch(match)
		return "![" + m[1] + "](" + imageDir + "/" + m[2] + ")"
	})

	content = acTocMacro.ReplaceAllString(content, "\n[TOC]\n")

	content = acCodeMacroWithLang.ReplaceAllStringFunc(content, func(match string) string {
		m := acCodeMacroWithLang.FindStringSubmatch(match)
		lang := strings.ToLower(m[1])
		if mapped, ok := langMapReverse[lang]; ok {
			lang = mapped
		}
		return "\n```" + lang + "\n" + strings.TrimRight(m[2], "\n") + "\n```\n"
	})
	content = acCodeMacroNoLang.ReplaceAllStringFunc(content, func(match string) string {
		m := acCodeMacroNoLang.FindStringSubmatch(match)
		return "\n```\n" + strings.TrimRight(m[1], "\n") + "\n```\n"
	})

	var blocks []string
	content = fencedBlock.ReplaceAllStringFunc(content, func(match string) string {
		blocks = append(blocks, match)
		return codeMarkOpen + strconv.Itoa(len(blocks)-1) + codeMarkClose
	})

	ex := &extractor{}
	z := html.NewTokenizer(strings.NewReader(content))
	for z.Next() != html.ErrorToken {
		tok := z.Token()
		switch tok.Type {
		case html.StartTagToken, html.SelfClosingTagToken:
			ex.start(tok)
		case html.EndTagToken:
			ex.end(tok.Data)
		case html.TextToken:
			ex.text(tok.Data)
		}
	}

	text := strings.Join(ex.out, "")
	text = blankNewlines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	for i, block := range blocks {
		text = strings.Replace(text, codeMarkOpen+strconv.Itoa(i)+codeMarkClose, block, 1)
	}
	return text
}

var headerLevels = map[string]string{
	"h1": "#", "h2": "##", "h3": "###",
	"h4": "####", "h5": "#####", "h6": "######",
}

// listFrame tracks one level of list nesting.
type listFrame struct {
	ordered bool
	next    int
}

// extractor walks tokenized XHTML and accumulates markdown fragments.
type extractor struct {
	out            []string
	inCode         bool
	listStack      []listFrame
	justClosedList bool
	pendingLink    string

	inTable         bool
	inTHead         bool
	tableRow        []string
	tableHeaderDone bool
}

// lineBreak starts a new line without stacking blank lines, which would
// turn tight lists loose on the next push.
func (ex *extractor) lineBreak() {
	if n := len(ex.out); n > 0 && strings.HasSuffix(ex.out[n-1], "\n") {
		return
	}
	ex.out = append(ex.out, "\n")
}

func attrMap(tok html.Token) map[string]string {
	attrs := make(map[string]string, len(tok.Attr))
	for _, a := range tok.Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

func (ex *extractor) start(tok html.Token) {
	tag := tok.Data
	switch {
	case tag == "br":
		ex.out = append(ex.out, "\n")
	case headerLevels[tag] != "":
		ex.out = append(ex.out, "\n"+headerLevels[tag]+" ")
	case tag == "ul":
		if len(ex.listStack) > 0 {
			ex.lineBreak()
		}
		ex.listStack = append(ex.listStack, listFrame{})
	case tag == "ol":
		if len(ex.listStack) > 0 {
			ex.lineBreak()
		}
		start := 1
		if s, err := strconv.Atoi(attrMap(tok)["start"]); err == nil {
			start = s
		}
		ex.listStack = append(ex.listStack, listFrame{ordered: true, next: start})
	case tag == "li":
		indent := strings.Repeat("  ", len(ex.listStack)-1)
		if top := &ex.listStack[len(ex.listStack)-1]; top.ordered {
			ex.out = append(ex.out, indent+strconv.Itoa(top.next)+". ")
			top.next++
		} else {
			ex.out = append(ex.out, indent+"- ")
		}
	case tag == "code" && !ex.inCode:
		ex.out = append(ex.out, "`")
		ex.inCode = true
	case tag == "strong" || tag == "b":
		ex.out = append(ex.out, "**")
	case tag == "em" || tag == "i":
		ex.out = append(ex.out, "*")
	case tag == "hr":
		ex.out = append(ex.out, "\n---\n")
	case tag == "a":
		ex.pendingLink = attrMap(tok)["href"]
		ex.out = append(ex.out, "[")
	case tag == "img":
		attrs := attrMap(tok)
		ex.out = append(ex.out, "!["+attrs["alt"]+"]("+attrs["src"]+")")
	case tag == "blockquote":
		ex.out = append(ex.out, "\n> ")
	case tag == "table":
		ex.inTable = true
		ex.tableHeaderDone = false
		ex.out = append(ex.out, "\n")
	case tag == "thead":
		ex.inTHead = true
	case tag == "tbody":
		ex.inTHead = false
	case tag == "tr":
		ex.tableRow = nil
	}
}

func (ex *extractor) end(tag string) {
	switch {
	case headerLevels[tag] != "":
		ex.out = append(ex.out, "\n")
	case tag == "ul" || tag == "ol":
		if len(ex.listStack) > 0 {
			ex.listStack = ex.listStack[:len(ex.listStack)-1]
		}
		if len(ex.listStack) == 0 {
			ex.out = append(ex.out, "\n")
		} else {
			ex.justClosedList = true
		}
	case tag == "li":
		// A closed nested list already emitted the line break.
		if ex.justClosedList {
			ex.justClosedList = false
		} else {
			ex.out = append(ex.out, "\n")
		}
	case tag == "p" || tag == "div":
		ex.out = append(ex.out, "\n\n")
	case tag == "code" && ex.inCode:
		ex.out = append(ex.out, "`")
		ex.inCode = false
	case tag == "strong" || tag == "b":
		ex.out = append(ex.out, "**")
	case tag == "em" || tag == "i":
		ex.out = append(ex.out, "*")
	case tag == "a":
		ex.out = append(ex.out, "]("+ex.pendingLink+")")
		ex.pendingLink = ""
	case tag == "blockquote":
		ex.out = append(ex.out, "\n")
	case tag == "table":
		ex.inTable = false
		ex.out = append(ex.out, "\n")
	case tag == "thead":
		ex.inTHead = false
	case tag == "tr":
		if len(ex.tableRow) == 0 {
			return
		}
		ex.out = append(ex.out, "| "+strings.Join(ex.tableRow, " | ")+" |\n")
		if ex.inTHead || !ex.tableHeaderDone {
			sep := make([]string, len(ex.tableRow))
			for i := range sep {
				sep[i] = "---"
			}
			ex.out = append(ex.out, "|"+strings.Join(sep, "|")+"|\n")
			ex.tableHeaderDone = true
		}
		ex.tableRow = nil
	}
}

func (ex *extractor) text(data string) {
	// Whitespace between structural tags carries no content.
	if (len(ex.listStack) > 0 || ex.inTable) && strings.TrimSpace(data) == "" {
		return
	}
	if ex.inTable {
		ex.tableRow = append(ex.tableRow, strings.TrimSpace(data))
		return
	}
	ex.out = append(ex.out, data)
}
