package sync

import (
	"github.com/kemari/confsync/internal/document"
	"github.com/kemari/confsync/internal/model"
)

// Kind is the classified drift state of one linked document.
type Kind int

const (
	// KindNoOp means neither side changed since the last sync.
	KindNoOp Kind = iota

	// KindPush means only the local document changed.
	KindPush

	// KindPull means only the remote page changed.
	KindPull

	// KindConflict means both sides changed independently.
	KindConflict
)

// String returns the drift state name.
func (k Kind) String() string {
	switch k {
	case KindNoOp:
		return "in sync"
	case KindPush:
		return "local ahead"
	case KindPull:
		return "remote ahead"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Decision is the drift classification for one document, computed once
// per invocation and never persisted.
type Decision struct {
	Kind Kind

	// LocalChanged and RemoteChanged are the two inputs to the drift
	// table, kept for status reporting.
	LocalChanged  bool
	RemoteChanged bool

	// RemoteFrom is the version recorded at the last sync; RemoteTo is
	// the version the remote page is at now.
	RemoteFrom int
	RemoteTo   int
}

// Classify applies the drift table to a linked document.
//
//	local   remote  decision
//	clean   clean   no-op
//	dirty   clean   push
//	clean   dirty   pull
//	dirty   dirty   conflict
//
// A linked document that has never completed a sync has no recorded
// point to compare against; it is treated as locally changed so the
// first put pushes it.
func Classify(fm *document.FrontMatter, remote *model.RemotePage, localBody string, imagesDirty bool) Decision {
	if !fm.Synced() {
		return Decision{
			Kind:         KindPush,
			LocalChanged: true,
			RemoteTo:     remote.Version,
		}
	}

	contentChanged := document.Hash(localBody) != fm.ContentHash
	localChanged := contentChanged || imagesDirty
	remoteChanged := remote.Version != fm.SyncedVersion

	dec := Decision{
		LocalChanged:  localChanged,
		RemoteChanged: remoteChanged,
		RemoteFrom:    fm.SyncedVersion,
		RemoteTo:      remote.Version,
	}
	switch {
	case localChanged && remoteChanged:
		dec.Kind = KindConflict
	case localChanged:
		dec.Kind = KindPush
	case remoteChanged:
		dec.Kind = KindPull
	default:
		dec.Kind = KindNoOp
	}
	return dec
}
