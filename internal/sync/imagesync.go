package sync

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"

	"github.com/kemari/confsync/internal/document"
	"github.com/kemari/confsync/internal/mdconv"
	"github.com/kemari/confsync/internal/wiki"
)

// ImageSyncer reconciles the images a document references against the
// attachments of its remote page, gated by content hashes: an image is
// only transferred when its digest differs from the one recorded at the
// last sync. Re-uploading unchanged images would bump remote attachment
// versions spuriously, so the gate is a correctness property.
type ImageSyncer struct {
	transport Transport
	logger    *slog.Logger
}

// NewImageSyncer creates an image syncer.
func NewImageSyncer(transport Transport, logger *slog.Logger) *ImageSyncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageSyncer{transport: transport, logger: logger}
}

// Dirty reports whether any image referenced by body differs from the
// digest recorded at the last sync. Missing local files are ignored;
// they cannot be uploaded anyway.
func (s *ImageSyncer) Dirty(docPath, body string, recorded map[string]string) bool {
	docDir := filepath.Dir(docPath)
	for _, img := range mdconv.ExtractLocalImages(body) {
		data, err := os.ReadFile(filepath.Join(docDir, img.Path))
		if err != nil {
			continue
		}
		name := imageName(img.Path)
		if recorded[name] != document.HashBytes(data) {
			return true
		}
	}
	return false
}

// Push uploads every referenced image whose digest differs from the
// recorded one and returns the full name-to-digest map for the images
// that exist locally. Referenced images missing on disk are logged and
// skipped. A failed upload aborts with an AssetSyncError; the caller
// must not persist any metadata in that case.
func (s *ImageSyncer) Push(ctx context.Context, pageID, docPath, body string, recorded map[string]string) (map[string]string, error) {
	images := mdconv.ExtractLocalImages(body)
	if len(images) == 0 {
		return nil, nil
	}

	hashes := make(map[string]string)
	docDir := filepath.Dir(docPath)
	for _, img := range images {
		data, err := os.ReadFile(filepath.Join(docDir, img.Path))
		if err != nil {
			s.logger.Warn("referenced image not found, skipping",
				slog.String("document", docPath),
				slog.String("image", img.Path))
			continue
		}

		name := imageName(img.Path)
		hash := document.HashBytes(data)
		hashes[name] = hash
		if recorded[name] == hash {
			continue
		}

		if err := s.transport.UploadAttachment(ctx, pageID, name, data); err != nil {
			return nil, &AssetSyncError{Name: name, Op: "upload", Err: err}
		}
		s.logger.Info("uploaded image",
			slog.String("page_id", pageID),
			slog.String("image", name))
	}
	return hashes, nil
}

// Pull downloads every image the pulled body references whose remote
// content differs from the local file, writing into the image
// directory next to the document. Attachments the body does not
// reference are left alone. Returns the name-to-digest map for the
// downloaded and verified images.
func (s *ImageSyncer) Pull(ctx context.Context, pageID, docPath, body string) (map[string]string, error) {
	images := mdconv.ExtractLocalImages(body)
	if len(images) == 0 {
		return nil, nil
	}

	docDir := filepath.Dir(docPath)
	hashes := make(map[string]string)
	for _, img := range images {
		name := imageName(img.Path)
		localPath := filepath.Join(docDir, img.Path)

		var localHash string
		if data, err := os.ReadFile(localPath); err == nil {
			localHash = document.HashBytes(data)
		}

		data, err := s.transport.DownloadAttachment(ctx, pageID, name)
		if err != nil {
			if errors.Is(err, wiki.ErrNotFound) {
				// Body references an attachment the page no longer has.
				s.logger.Warn("referenced attachment missing remotely",
					slog.String("page_id", pageID),
					slog.String("image", name))
				continue
			}
			return nil, &AssetSyncError{Name: name, Op: "download", Err: err}
		}

		remoteHash := document.HashBytes(data)
		if localHash == remoteHash {
			hashes[name] = remoteHash
			continue
		}

		if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
			return nil, &AssetSyncError{Name: name, Op: "download", Err: err}
		}
		if err := os.WriteFile(localPath, data, 0644); err != nil {
			return nil, &AssetSyncError{Name: name, Op: "download", Err: err}
		}
		hashes[name] = remoteHash
		s.logger.Info("downloaded image",
			slog.String("page_id", pageID),
			slog.String("image", name))
	}
	return hashes, nil
}

// imageName is the attachment name for a local image path: the base
// file name, Unicode-normalized so macOS-decomposed names match the
// names the remote store reports.
func imageName(p string) string {
	return norm.NFC.String(filepath.Base(p))
}
