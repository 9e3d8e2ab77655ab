package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kemari/confsync/internal/model"
)

// pageBody is the content API's page representation, pared down to the
// expansions this client requests.
type pageBody struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Version struct {
		Number int `json:"number"`
	} `json:"version"`
	Body struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Ancestors []struct {
		ID string `json:"id"`
	} `json:"ancestors"`
	Space struct {
		Key string `json:"key"`
	} `json:"space"`
}

func (p *pageBody) toModel() *model.RemotePage {
	page := &model.RemotePage{
		ID:       p.ID,
		Title:    p.Title,
		Version:  p.Version.Number,
		Body:     p.Body.Storage.Value,
		SpaceKey: p.Space.Key,
	}
	// Ancestors are root-first; the direct parent is the last entry.
	if n := len(p.Ancestors); n > 0 {
		page.ParentID = p.Ancestors[n-1].ID
	}
	return page
}

// FetchPage retrieves a page with its storage body, version, parent,
// and space. Labels live on a separate endpoint and are not included;
// use GetLabels when they matter.
func (c *Client) FetchPage(ctx context.Context, pageID string) (*model.RemotePage, error) {
	var page pageBody
	query := url.Values{"expand": {"body.storage,version,ancestors,space"}}
	if err := c.getJSON(ctx, "/content/"+pageID, query, &page); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("page %s: %w", pageID, ErrNotFound)
		}
		return nil, err
	}
	return page.toModel(), nil
}

type pagePayload struct {
	Type    string       `json:"type"`
	Title   string       `json:"title"`
	Space   *spaceRef    `json:"space,omitempty"`
	Version *versionRef  `json:"version,omitempty"`
	Body    bodyPayload  `json:"body"`
	Parents []ancestorID `json:"ancestors,omitempty"`
}

type spaceRef struct {
	Key string `json:"key"`
}

type versionRef struct {
	Number int `json:"number"`
}

type bodyPayload struct {
	Storage storagePayload `json:"storage"`
}

type storagePayload struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

type ancestorID struct {
	ID string `json:"id"`
}

// CreatePage creates a new page and applies its labels. An empty
// parentID creates a top-level page. The space comes from the client's
// configured space key, or from the parent when no key is configured.
func (c *Client) CreatePage(ctx context.Context, title, parentID, body string, labels []string) (*model.RemotePage, error) {
	spaceKey := c.spaceKey
	if spaceKey == "" {
		if parentID == "" {
			return nil, fmt.Errorf("create page %q: no space key configured and no parent to inherit one from", title)
		}
		parent, err := c.FetchPage(ctx, parentID)
		if err != nil {
			return nil, fmt.Errorf("resolve space from parent %s: %w", parentID, err)
		}
		spaceKey = parent.SpaceKey
	}

	payload := pagePayload{
		Type:  "page",
		Title: title,
		Space: &spaceRef{Key: spaceKey},
		Body: bodyPayload{
			Storage: storagePayload{Value: body, Representation: "storage"},
		},
	}
	if parentID != "" {
		payload.Parents = []ancestorID{{ID: parentID}}
	}

	var created pageBody
	if _, err := c.sendJSON(ctx, http.MethodPost, "/content", payload, &created); err != nil {
		return nil, fmt.Errorf("create page %q: %w", title, err)
	}

	if len(labels) > 0 {
		if err := c.AddLabels(ctx, created.ID, labels); err != nil {
			return nil, fmt.Errorf("label created page %s: %w", created.ID, err)
		}
	}

	page := created.toModel()
	page.SpaceKey = spaceKey
	page.Labels = labels
	return page, nil
}

// UpdatePage replaces a page's title and body. expectedVersion must be
// the version the caller's content is based on; the store rejects the
// write if the page has moved past it, which surfaces here as a
// VersionConflictError.
func (c *Client) UpdatePage(ctx context.Context, pageID string, expectedVersion int, title, body string) (*model.RemotePage, error) {
	payload := pagePayload{
		Type:    "page",
		Title:   title,
		Version: &versionRef{Number: expectedVersion + 1},
		Body: bodyPayload{
			Storage: storagePayload{Value: body, Representation: "storage"},
		},
	}

	var updated pageBody
	status, err := c.sendJSON(ctx, http.MethodPut, "/content/"+pageID, payload, &updated)
	if err != nil {
		if status == http.StatusConflict {
			return nil, &VersionConflictError{PageID: pageID, ExpectedVersion: expectedVersion}
		}
		return nil, fmt.Errorf("update page %s: %w", pageID, err)
	}
	return updated.toModel(), nil
}

type labelList struct {
	Results []struct {
		Name string `json:"name"`
	} `json:"results"`
}

// GetLabels returns the page's label names.
func (c *Client) GetLabels(ctx context.Context, pageID string) ([]string, error) {
	var list labelList
	if err := c.getJSON(ctx, "/content/"+pageID+"/label", nil, &list); err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(list.Results))
	for _, l := range list.Results {
		labels = append(labels, l.Name)
	}
	return labels, nil
}

type labelName struct {
	Name string `json:"name"`
}

// AddLabels adds labels to a page. Adding no labels is a no-op.
func (c *Client) AddLabels(ctx context.Context, pageID string, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	payload := make([]labelName, 0, len(labels))
	for _, l := range labels {
		payload = append(payload, labelName{Name: l})
	}
	if _, err := c.sendJSON(ctx, http.MethodPost, "/content/"+pageID+"/label", payload, nil); err != nil {
		return fmt.Errorf("add labels to page %s: %w", pageID, err)
	}
	return nil
}

// RemoveLabel removes a single label from a page.
func (c *Client) RemoveLabel(ctx context.Context, pageID, label string) error {
	data, status, err := c.do(ctx, http.MethodDelete, "/content/"+pageID+"/label/"+url.PathEscape(label), nil, nil, "", nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("remove label %q from page %s: %w", label, pageID, c.statusError(http.MethodDelete, "/content/"+pageID+"/label", status, data))
	}
	return nil
}

// SetLabels reconciles the page's labels to exactly the desired set,
// removing and adding as needed.
func (c *Client) SetLabels(ctx context.Context, pageID string, labels []string) error {
	current, err := c.GetLabels(ctx, pageID)
	if err != nil {
		return fmt.Errorf("read labels of page %s: %w", pageID, err)
	}

	desired := make(map[string]bool, len(labels))
	for _, l := range labels {
		desired[l] = true
	}
	have := make(map[string]bool, len(current))
	for _, l := range current {
		have[l] = true
	}

	for _, l := range current {
		if !desired[l] {
			if err := c.RemoveLabel(ctx, pageID, l); err != nil {
				return err
			}
		}
	}

	var missing []string
	for _, l := range labels {
		if !have[l] {
			missing = append(missing, l)
		}
	}
	return c.AddLabels(ctx, pageID, missing)
}
