package model

import "time"

// Action identifies the sync action taken (or required) for a document.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons. The String() method provides human-readable
// output when needed.
type Action int

const (
	// ActionNoOp means local and remote were already in sync.
	ActionNoOp Action = iota

	// ActionCreate means a new remote page was created for an unlinked document.
	ActionCreate

	// ActionPush means local changes were uploaded to the remote page.
	ActionPush

	// ActionPull means remote changes were downloaded into the local document.
	ActionPull

	// ActionConflict means local and remote both changed since the last sync.
	// No mutation is performed unless the conflict is forced one way.
	ActionConflict

	// ActionStatus means only the drift classification was reported.
	ActionStatus

	// ActionDiff means only a local/remote diff was rendered.
	ActionDiff
)

// String returns a human-readable representation of the action.
func (a Action) String() string {
	switch a {
	case ActionNoOp:
		return "in-sync"
	case ActionCreate:
		return "create"
	case ActionPush:
		return "push"
	case ActionPull:
		return "pull"
	case ActionConflict:
		return "conflict"
	case ActionStatus:
		return "status"
	case ActionDiff:
		return "diff"
	default:
		return "unknown"
	}
}

// SyncResult records the outcome of synchronizing a single document.
// Results are collected per batch, rendered by the report package, and
// journaled by the history package.
type SyncResult struct {
	// File is the path of the local document.
	File string `json:"file"`

	// PageID is the remote page the document is linked to.
	// Empty when the document was unlinked and creation was not requested.
	PageID string `json:"pageId,omitempty"`

	// Action is the sync action that was taken.
	Action Action `json:"-"`

	// ActionName is the string form of Action, kept for JSON output.
	ActionName string `json:"action"`

	// FromVersion is the remote version before the action.
	FromVersion int `json:"fromVersion,omitempty"`

	// ToVersion is the remote version after the action.
	ToVersion int `json:"toVersion,omitempty"`

	// LocalChanged and RemoteChanged record the drift classification.
	LocalChanged  bool `json:"localChanged"`
	RemoteChanged bool `json:"remoteChanged"`

	// Detail carries human-readable output for status and diff requests.
	Detail string `json:"detail,omitempty"`

	// FinishedAt is when processing of this document completed.
	FinishedAt time.Time `json:"finishedAt"`

	// Err is the error that aborted this document's sync, if any.
	// It is excluded from JSON; ErrorMessage carries the text instead.
	Err error `json:"-"`

	// ErrorMessage is the string form of Err for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewSyncResult creates a SyncResult for the given file.
func NewSyncResult(file string) *SyncResult {
	return &SyncResult{File: file}
}

// Finish stamps the result with its action, completion time, and error.
// It keeps ActionName and ErrorMessage consistent with Action and Err.
func (r *SyncResult) Finish(action Action, err error) *SyncResult {
	r.Action = action
	r.ActionName = action.String()
	r.FinishedAt = time.Now().UTC()
	r.Err = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	return r
}

// OK reports whether the document synchronized without error.
func (r *SyncResult) OK() bool {
	return r.Err == nil
}
