package mdconv

import (
	"path"
	"regexp"
	"strings"

	"github.com/kemari/confsync/internal/model"
)

// imagePattern matches markdown image syntax: ![alt](path).
var imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)

// isRemoteImage reports whether an image path points at an external URL
// rather than a local file.
func isRemoteImage(p string) bool {
	return strings.HasPrefix(p, "http://") ||
		strings.HasPrefix(p, "https://") ||
		strings.HasPrefix(p, "//")
}

// ExtractLocalImages returns the local image references in md, in
// document order. External URLs are skipped; they are never uploaded.
func ExtractLocalImages(md string) []model.ImageReference {
	var images []model.ImageReference
	for _, m := range imagePattern.FindAllStringSubmatch(md, -1) {
		alt, p := m[1], m[2]
		if isRemoteImage(p) {
			continue
		}
		images = append(images, model.ImageReference{Alt: alt, Path: p})
	}
	return images
}

// imagesToAttachments rewrites local image paths into attachment
// references by file name, e.g. ![d](./images/foo.png) becomes
// ![d](attachment:foo.png). The upload itself happens separately.
func imagesToAttachments(md string) string {
	return imagePattern.ReplaceAllStringFunc(md, func(match string) string {
		m := imagePattern.FindStringSubmatch(match)
		alt, p := m[1], m[2]
		if isRemoteImage(p) {
			return match
		}
		return "![" + alt + "](attachment:" + path.Base(p) + ")"
	})
}
