package sync

import (
	"context"
	"fmt"
	"strconv"
	gosync "sync"

	"github.com/kemari/confsync/internal/model"
	"github.com/kemari/confsync/internal/wiki"
)

// fakeTransport is an in-memory remote store. It enforces the same
// optimistic versioning as the real one so drift scenarios behave
// authentically.
type fakeTransport struct {
	mu gosync.Mutex

	pages       map[string]*model.RemotePage
	labels      map[string][]string
	attachments map[string]map[string][]byte

	nextID int

	// call counters for behavioral assertions
	createCalls int
	updateCalls int
	uploads     []string // "pageID/filename"

	// failure injection
	updateErr   error
	uploadErr   error
	downloadErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		pages:       make(map[string]*model.RemotePage),
		labels:      make(map[string][]string),
		attachments: make(map[string]map[string][]byte),
		nextID:      900,
	}
}

func (f *fakeTransport) addPage(page *model.RemotePage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[page.ID] = page
}

func (f *fakeTransport) FetchPage(_ context.Context, pageID string) (*model.RemotePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page, ok := f.pages[pageID]
	if !ok {
		return nil, fmt.Errorf("page %s: %w", pageID, wiki.ErrNotFound)
	}
	cp := *page
	return &cp, nil
}

func (f *fakeTransport) CreatePage(_ context.Context, title, parentID, body string, labels []string) (*model.RemotePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.nextID++
	page := &model.RemotePage{
		ID:       strconv.Itoa(f.nextID),
		Title:    title,
		Version:  1,
		Body:     body,
		ParentID: parentID,
		Labels:   labels,
	}
	f.pages[page.ID] = page
	f.labels[page.ID] = labels
	return page, nil
}

func (f *fakeTransport) UpdatePage(_ context.Context, pageID string, expectedVersion int, title, body string) (*model.RemotePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	page, ok := f.pages[pageID]
	if !ok {
		return nil, fmt.Errorf("page %s: %w", pageID, wiki.ErrNotFound)
	}
	if page.Version != expectedVersion {
		return nil, &wiki.VersionConflictError{PageID: pageID, ExpectedVersion: expectedVersion}
	}
	page.Version++
	page.Title = title
	page.Body = body
	cp := *page
	return &cp, nil
}

func (f *fakeTransport) GetLabels(_ context.Context, pageID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.labels[pageID]...), nil
}

func (f *fakeTransport) SetLabels(_ context.Context, pageID string, labels []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels[pageID] = append([]string(nil), labels...)
	return nil
}

func (f *fakeTransport) Attachments(_ context.Context, pageID string) ([]model.RemoteAttachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.RemoteAttachment
	for name := range f.attachments[pageID] {
		out = append(out, model.RemoteAttachment{ID: "att-" + name, Filename: name})
	}
	return out, nil
}

func (f *fakeTransport) UploadAttachment(_ context.Context, pageID, filename string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	if f.attachments[pageID] == nil {
		f.attachments[pageID] = make(map[string][]byte)
	}
	f.attachments[pageID][filename] = append([]byte(nil), data...)
	f.uploads = append(f.uploads, pageID+"/"+filename)
	return nil
}

func (f *fakeTransport) DownloadAttachment(_ context.Context, pageID, filename string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	data, ok := f.attachments[pageID][filename]
	if !ok {
		return nil, fmt.Errorf("attachment %s on page %s: %w", filename, pageID, wiki.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (f *fakeTransport) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}
