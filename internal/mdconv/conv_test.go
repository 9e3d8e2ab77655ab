package mdconv

import (
	"strings"
	"testing"
)

// TestExtractLocalImages verifies local references are found and URLs skipped.
func TestExtractLocalImages(t *testing.T) {
	t.Parallel()

	md := "![diagram](images/arch.png)\n" +
		"![remote](https://cdn.example.net/pic.png)\n" +
		"![icon](./images/icon.svg)\n" +
		"![proto](//cdn.example.net/p.png)\n"

	images := ExtractLocalImages(md)
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2: %v", len(images), images)
	}
	if images[0].Alt != "diagram" || images[0].Path != "images/arch.png" {
		t.Errorf("images[0] = %+v", images[0])
	}
	if images[1].Path != "./images/icon.svg" {
		t.Errorf("images[1] = %+v", images[1])
	}
}

// TestMarkdownToStorage verifies rendering into the wiki macro vocabulary.
func TestMarkdownToStorage(t *testing.T) {
	t.Parallel()

	convert := func(t *testing.T, md string) string {
		t.Helper()
		out, err := MarkdownToStorage(md)
		if err != nil {
			t.Fatalf("MarkdownToStorage() error = %v", err)
		}
		return out
	}

	t.Run("headers and emphasis", func(t *testing.T) {
		t.Parallel()
		out := convert(t, "# H1\n\nThis is **bold** and *italic*")
		for _, want := range []string{"<h1>H1</h1>", "<strong>bold</strong>", "<em>italic</em>"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("code block with language mapping", func(t *testing.T) {
		t.Parallel()
		tests := []struct{ fence, want string }{
			{"py", "python"},
			{"js", "javascript"},
			{"sh", "bash"},
			{"csharp", "c#"},
			{"go", "go"},
		}
		for _, tt := range tests {
			out := convert(t, "```"+tt.fence+"\ncode\n```")
			want := `<ac:parameter ac:name="language">` + tt.want + `</ac:parameter>`
			if !strings.Contains(out, want) {
				t.Errorf("fence %q: output missing %q:\n%s", tt.fence, want, out)
			}
			if !strings.Contains(out, `<ac:structured-macro ac:name="code">`) {
				t.Errorf("fence %q: no code macro:\n%s", tt.fence, out)
			}
		}
	})

	t.Run("code block without language", func(t *testing.T) {
		t.Parallel()
		out := convert(t, "```\nplain\n```")
		if !strings.Contains(out, `<ac:parameter ac:name="language">none</ac:parameter>`) {
			t.Errorf("output missing none language:\n%s", out)
		}
	})

	t.Run("code block entities unescaped into CDATA", func(t *testing.T) {
		t.Parallel()
		out := convert(t, "```html\n<div class=\"foo\">a & b</div>\n```")
		if !strings.Contains(out, `<![CDATA[<div class="foo">a & b</div>`) {
			t.Errorf("code body not restored verbatim:\n%s", out)
		}
	})

	t.Run("toc marker", func(t *testing.T) {
		t.Parallel()
		out := convert(t, "# Title\n\n[TOC]\n\n## Section")
		if !strings.Contains(out, `<ac:structured-macro ac:name="toc"/>`) {
			t.Errorf("output missing toc macro:\n%s", out)
		}
		if strings.Contains(out, "[TOC]") {
			t.Errorf("raw [TOC] leaked through:\n%s", out)
		}
	})

	t.Run("local image becomes attachment macro", func(t *testing.T) {
		t.Parallel()
		out := convert(t, "![arch](./images/arch.png)")
		if !strings.Contains(out, `<ri:attachment ri:filename="arch.png"/>`) {
			t.Errorf("output missing attachment reference:\n%s", out)
		}
		if !strings.Contains(out, `ac:alt="arch"`) {
			t.Errorf("alt text dropped:\n%s", out)
		}
	})

	t.Run("remote image untouched", func(t *testing.T) {
		t.Parallel()
		out := convert(t, "![x](https://cdn.example.net/pic.png)")
		if strings.Contains(out, "ri:attachment") {
			t.Errorf("remote image converted to attachment:\n%s", out)
		}
		if !strings.Contains(out, "https://cdn.example.net/pic.png") {
			t.Errorf("remote URL dropped:\n%s", out)
		}
	})

	t.Run("table", func(t *testing.T) {
		t.Parallel()
		out := convert(t, "| A | B |\n|---|---|\n| 1 | 2 |")
		for _, want := range []string{"<table>", "<th>A</th>", "<td>1</td>"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

// TestStorageToMarkdown verifies macro and markup reconstruction.
func TestStorageToMarkdown(t *testing.T) {
	t.Parallel()

	t.Run("headers", func(t *testing.T) {
		t.Parallel()
		md := StorageToMarkdown("<h1>Title</h1><h2>Section</h2>", "images")
		if !strings.Contains(md, "# Title") || !strings.Contains(md, "## Section") {
			t.Errorf("got:\n%s", md)
		}
	})

	t.Run("emphasis and links", func(t *testing.T) {
		t.Parallel()
		md := StorageToMarkdown(`<p><strong>bold</strong> and <em>italic</em> with <a href="https://example.com">link</a></p>`, "images")
		for _, want := range []string{"**bold**", "*italic*", "[link](https://example.com)"} {
			if !strings.Contains(md, want) {
				t.Errorf("output missing %q:\n%s", want, md)
			}
		}
	})

	t.Run("code macro", func(t *testing.T) {
		t.Parallel()
		storage := `<ac:structured-macro ac:name="code">` +
			`<ac:parameter ac:name="language">python</ac:parameter>` +
			`<ac:plain-text-body><![CDATA[print("hello")]]></ac:plain-text-body>` +
			`</ac:structured-macro>`
		md := StorageToMarkdown(storage, "images")
		if !strings.Contains(md, "```python\nprint(\"hello\")\n```") {
			t.Errorf("got:\n%s", md)
		}
	})

	t.Run("code macro language reverse mapping", func(t *testing.T) {
		t.Parallel()
		storage := `<ac:structured-macro ac:name="code">` +
			`<ac:parameter ac:name="language">html/xml</ac:parameter>` +
			`<ac:plain-text-body><![CDATA[<div></div>]]></ac:plain-text-body>` +
			`</ac:structured-macro>`
		md := StorageToMarkdown(storage, "images")
		if !strings.Contains(md, "```xml\n<div></div>\n```") {
			t.Errorf("angle brackets in code must survive:\n%s", md)
		}
	})

	t.Run("code macro none language", func(t *testing.T) {
		t.Parallel()
		storage := `<ac:structured-macro ac:name="code">` +
			`<ac:parameter ac:name="language">none</ac:parameter>` +
			`<ac:plain-text-body><![CDATA[plain]]></ac:plain-text-body>` +
			`</ac:structured-macro>`
		md := StorageToMarkdown(storage, "images")
		if !strings.Contains(md, "```\nplain\n```") {
			t.Errorf("got:\n%s", md)
		}
	})

	t.Run("toc macro", func(t *testing.T) {
		t.Parallel()
		md := StorageToMarkdown(`<ac:structured-macro ac:name="toc"/>`, "images")
		if !strings.Contains(md, "[TOC]") {
			t.Errorf("got:\n%s", md)
		}
	})

	t.Run("image macro uses image dir", func(t *testing.T) {
		t.Parallel()
		storage := `<ac:image ac:alt="arch"><ri:attachment ri:filename="arch.png"/></ac:image>`
		md := StorageToMarkdown(storage, "assets")
		if !strings.Contains(md, "![arch](assets/arch.png)") {
			t.Errorf("got:\n%s", md)
		}
	})

	t.Run("lists", func(t *testing.T) {
		t.Parallel()
		md := StorageToMarkdown("<ul><li>Item 1<ul><li>Nested</li></ul></li><li>Item 2</li></ul>", "images")
		for _, want := range []string{"- Item 1", "  - Nested", "- Item 2"} {
			if !strings.Contains(md, want) {
				t.Errorf("output missing %q:\n%s", want, md)
			}
		}

		md = StorageToMarkdown(`<ol start="3"><li>Third</li><li>Fourth</li></ol>`, "images")
		if !strings.Contains(md, "3. Third") || !strings.Contains(md, "4. Fourth") {
			t.Errorf("ordered list start lost:\n%s", md)
		}
	})

	t.Run("table", func(t *testing.T) {
		t.Parallel()
		storage := "<table><thead><tr><th>A</th><th>B</th></tr></thead>" +
			"<tbody><tr><td>1</td><td>2</td></tr></tbody></table>"
		md := StorageToMarkdown(storage, "images")
		for _, want := range []string{"| A | B |", "|---|---|", "| 1 | 2 |"} {
			if !strings.Contains(md, want) {
				t.Errorf("output missing %q:\n%s", want, md)
			}
		}
	})
}

// TestConversionStability verifies that converting pulled markdown back
// to storage format reproduces the same storage document, so a pull
// followed by a push is a no-op remotely.
func TestConversionStability(t *testing.T) {
	t.Parallel()

	docs := map[string]string{
		"simple":      "# Title\n\nParagraph with **bold**.",
		"code block":  "```python\ndef foo():\n    pass\n```",
		"nested list": "- Item 1\n  - Nested A\n  - Nested B\n- Item 2",
		"table":       "| A | B |\n|---|---|\n| 1 | 2 |",
		"toc":         "# Doc\n\n[TOC]\n\n## Section",
	}

	for name, md := range docs {
		md := md
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			storage, err := MarkdownToStorage(md)
			if err != nil {
				t.Fatalf("MarkdownToStorage() error = %v", err)
			}
			back := StorageToMarkdown(storage, "images")
			storage2, err := MarkdownToStorage(back)
			if err != nil {
				t.Fatalf("MarkdownToStorage() second pass error = %v", err)
			}
			if storage != storage2 {
				t.Errorf("conversion not stable:\nfirst:\n%s\npulled:\n%s\nsecond:\n%s", storage, back, storage2)
			}
		})
	}
}
