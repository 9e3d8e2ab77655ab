package sync

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kemari/confsync/internal/document"
	"github.com/kemari/confsync/internal/mdconv"
	"github.com/kemari/confsync/internal/model"
	"github.com/kemari/confsync/internal/report"
)

// Options controls how a put run treats each document.
type Options struct {
	// Create allows unlinked documents to create new remote pages.
	Create bool

	// ParentID is the parent for created pages: the explicit --parent
	// override or the parent the planner inferred from linked siblings.
	// Empty means top level.
	ParentID string

	// Force resolves a conflict by overwriting the remote page, and
	// pushes even when the document looks clean.
	Force bool

	// Pull replaces local content with the remote page.
	Pull bool

	// Status reports the drift classification without syncing.
	Status bool

	// Diff renders local against remote without syncing.
	Diff bool

	// PageOverride links this run to an explicit page instead of the
	// front matter's pageId. Only meaningful for a single document.
	PageOverride string

	// TitleOverride renames the remote page on push or create. Only
	// meaningful for a single document.
	TitleOverride string
}

// Syncer executes the put state machine for one document at a time.
type Syncer struct {
	transport Transport
	images    *ImageSyncer

	// imageDir is where pulled bodies point their image links.
	imageDir string

	logger *slog.Logger
}

// NewSyncer creates a syncer. imageDir is the conventional directory
// for pulled images, relative to each document.
func NewSyncer(transport Transport, imageDir string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		transport: transport,
		images:    NewImageSyncer(transport, logger),
		imageDir:  imageDir,
		logger:    logger,
	}
}

// SyncFile synchronizes one document. Errors are recorded in the
// returned result rather than returned, so batch callers treat every
// document uniformly.
func (s *Syncer) SyncFile(ctx context.Context, path string, opts Options) *model.SyncResult {
	res := model.NewSyncResult(path)

	doc, err := document.Load(path)
	if err != nil {
		return res.Finish(model.ActionNoOp, err)
	}

	pageID := doc.Matter.PageID
	if opts.PageOverride != "" {
		pageID = model.ParsePageRef(opts.PageOverride)
	}
	if pageID == "" {
		if !opts.Create {
			return res.Finish(model.ActionNoOp, fmt.Errorf("%s: %w", path, ErrNotLinked))
		}
		return s.create(ctx, doc, opts, res)
	}
	res.PageID = pageID

	remote, err := s.transport.FetchPage(ctx, pageID)
	if err != nil {
		return res.Finish(model.ActionNoOp, fmt.Errorf("%s: %w", path, err))
	}

	imagesDirty := s.images.Dirty(path, doc.Body, doc.Matter.ImageHashes)
	dec := Classify(doc.Matter, remote, doc.Body, imagesDirty)
	res.LocalChanged = dec.LocalChanged
	res.RemoteChanged = dec.RemoteChanged
	res.FromVersion = dec.RemoteFrom

	switch {
	case opts.Status:
		res.Detail = statusDetail(doc.Matter, dec)
		res.ToVersion = remote.Version
		return res.Finish(model.ActionStatus, nil)
	case opts.Diff:
		remoteMD := mdconv.StorageToMarkdown(remote.Body, s.imageDir)
		res.Detail = report.UnifiedDiff(
			fmt.Sprintf("remote (v%d)", remote.Version),
			fmt.Sprintf("local (%s)", path),
			remoteMD, doc.Body)
		return res.Finish(model.ActionDiff, nil)
	case opts.Pull:
		return s.pull(ctx, doc, remote, res)
	}

	switch dec.Kind {
	case KindNoOp:
		if opts.Force {
			return s.push(ctx, doc, remote, opts, res)
		}
		res.Detail = "already in sync"
		res.ToVersion = remote.Version
		return res.Finish(model.ActionNoOp, nil)
	case KindPush:
		return s.push(ctx, doc, remote, opts, res)
	case KindPull:
		return s.pull(ctx, doc, remote, res)
	default:
		if opts.Force {
			return s.forcePush(ctx, doc, remote, opts, res)
		}
		return res.Finish(model.ActionConflict, &ConflictError{
			File:         path,
			LocalChanged: dec.LocalChanged,
			RemoteFrom:   dec.RemoteFrom,
			RemoteTo:     dec.RemoteTo,
		})
	}
}

// push uploads changed images, then updates the remote page at the
// fetched version so a concurrent remote edit fails the write instead
// of being silently overwritten. Front matter is persisted only after
// the update is confirmed.
func (s *Syncer) push(ctx context.Context, doc *document.Document, remote *model.RemotePage, opts Options, res *model.SyncResult) *model.SyncResult {
	hashes, err := s.images.Push(ctx, remote.ID, doc.Path, doc.Body, doc.Matter.ImageHashes)
	if err != nil {
		return res.Finish(model.ActionPush, err)
	}

	storage, err := mdconv.MarkdownToStorage(doc.Body)
	if err != nil {
		return res.Finish(model.ActionPush, err)
	}

	// Title precedence: explicit override, then front matter, then the
	// current remote title.
	title := remote.Title
	if doc.Matter.Title != "" {
		title = doc.Matter.Title
	}
	if opts.TitleOverride != "" {
		title = opts.TitleOverride
	}

	updated, err := s.transport.UpdatePage(ctx, remote.ID, remote.Version, title, storage)
	if err != nil {
		return res.Finish(model.ActionPush, err)
	}

	// Labels are reconciled only when the front matter declares any;
	// a document without a labels key leaves remote labels alone.
	if doc.Matter.Labels != nil {
		if err := s.transport.SetLabels(ctx, remote.ID, doc.Matter.Labels); err != nil {
			return res.Finish(model.ActionPush, err)
		}
	}

	doc.Matter.PageID = updated.ID
	doc.Matter.ImageHashes = hashes
	doc.Matter.SetSyncPoint(updated.Version, doc.BodyHash())
	if err := doc.Save(); err != nil {
		return res.Finish(model.ActionPush, err)
	}

	res.FromVersion = remote.Version
	res.ToVersion = updated.Version
	s.logger.Info("pushed document",
		slog.String("file", doc.Path),
		slog.String("page_id", updated.ID),
		slog.Int("from_version", remote.Version),
		slog.Int("to_version", updated.Version))
	return res.Finish(model.ActionPush, nil)
}

// forcePush overwrites the remote page regardless of drift. The page is
// re-fetched first so the write lands on whatever version is current
// now, not the stale one conflict detection saw.
func (s *Syncer) forcePush(ctx context.Context, doc *document.Document, remote *model.RemotePage, opts Options, res *model.SyncResult) *model.SyncResult {
	fresh, err := s.transport.FetchPage(ctx, remote.ID)
	if err != nil {
		return res.Finish(model.ActionPush, fmt.Errorf("%s: %w", doc.Path, err))
	}
	return s.push(ctx, doc, fresh, opts, res)
}

// pull replaces the local body, title, and labels with the remote
// page's, downloads referenced images, and records the remote version
// as the new synchronization point.
func (s *Syncer) pull(ctx context.Context, doc *document.Document, remote *model.RemotePage, res *model.SyncResult) *model.SyncResult {
	body := mdconv.StorageToMarkdown(remote.Body, s.imageDir)
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	hashes, err := s.images.Pull(ctx, remote.ID, doc.Path, body)
	if err != nil {
		return res.Finish(model.ActionPull, err)
	}

	labels, err := s.transport.GetLabels(ctx, remote.ID)
	if err != nil {
		return res.Finish(model.ActionPull, fmt.Errorf("%s: %w", doc.Path, err))
	}

	doc.Body = body
	doc.Matter.PageID = remote.ID
	doc.Matter.Title = remote.Title
	// Remote labels win on pull; no labels remotely removes the key.
	if len(labels) > 0 {
		doc.Matter.Labels = labels
	} else {
		doc.Matter.Labels = nil
	}
	doc.Matter.ImageHashes = hashes
	doc.Matter.SetSyncPoint(remote.Version, doc.BodyHash())
	if err := doc.Save(); err != nil {
		return res.Finish(model.ActionPull, err)
	}

	res.ToVersion = remote.Version
	s.logger.Info("pulled document",
		slog.String("file", doc.Path),
		slog.String("page_id", remote.ID),
		slog.Int("version", remote.Version))
	return res.Finish(model.ActionPull, nil)
}

// create makes a new remote page for an unlinked document. The document
// is linked (pageId written) as soon as the page exists, before images
// are uploaded, so an image failure cannot cause a duplicate page on
// the next run.
func (s *Syncer) create(ctx context.Context, doc *document.Document, opts Options, res *model.SyncResult) *model.SyncResult {
	title := deriveTitle(doc, opts.TitleOverride)

	storage, err := mdconv.MarkdownToStorage(doc.Body)
	if err != nil {
		return res.Finish(model.ActionCreate, err)
	}

	page, err := s.transport.CreatePage(ctx, title, opts.ParentID, storage, doc.Matter.Labels)
	if err != nil {
		return res.Finish(model.ActionCreate, &CreateError{Title: title, Err: err})
	}
	res.PageID = page.ID

	doc.Matter.PageID = page.ID
	doc.Matter.Title = title
	doc.Matter.SetSyncPoint(page.Version, doc.BodyHash())
	if err := doc.Save(); err != nil {
		return res.Finish(model.ActionCreate, err)
	}

	hashes, err := s.images.Push(ctx, page.ID, doc.Path, doc.Body, nil)
	if err != nil {
		return res.Finish(model.ActionCreate, err)
	}
	if len(hashes) > 0 {
		doc.Matter.ImageHashes = hashes
		if err := doc.Save(); err != nil {
			return res.Finish(model.ActionCreate, err)
		}
	}

	res.ToVersion = page.Version
	s.logger.Info("created page",
		slog.String("file", doc.Path),
		slog.String("page_id", page.ID),
		slog.String("title", title))
	return res.Finish(model.ActionCreate, nil)
}

// deriveTitle picks the title for a created page: the explicit
// override, the front matter title, the first heading, or the file name
// in title case.
func deriveTitle(doc *document.Document, override string) string {
	if override != "" {
		return override
	}
	if doc.Matter.Title != "" {
		return doc.Matter.Title
	}
	for _, line := range strings.Split(doc.Body, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(rest)
		}
	}
	stem := strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return cases.Title(language.English).String(stem)
}

// statusDetail renders the drift classification for --status output.
func statusDetail(fm *document.FrontMatter, dec Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "remote version %d", dec.RemoteTo)
	if !fm.Synced() {
		b.WriteString("; never synced")
		return b.String()
	}
	fmt.Fprintf(&b, "; last synced version %d", dec.RemoteFrom)
	fmt.Fprintf(&b, "; local changed: %s", yesNo(dec.LocalChanged))
	fmt.Fprintf(&b, "; remote changed: %s", yesNo(dec.RemoteChanged))
	fmt.Fprintf(&b, "; status: %s", dec.Kind)
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
