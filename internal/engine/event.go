package engine

import (
	"encoding/json"

	fsutil "github.com/kk-code-lab/rscan/internal/fs"
	"github.com/kk-code-lab/rscan/internal/search"
)

// BatchMode tells consumers how to merge an event's payload.
type BatchMode string

const (
	// ModeSnapshot events carry the full current top results and supersede
	// earlier events of the same operation. Name search uses snapshots.
	ModeSnapshot BatchMode = "snapshot"
	// ModeDelta events carry only results not sent before. Content search and
	// enumeration use deltas.
	ModeDelta BatchMode = "delta"
)

// Counters are cumulative per operation.
type Counters struct {
	TotalScanned  uint64
	FilesSearched uint64
	TotalMatches  uint64
}

// Event is one batch streamed for an operation. Exactly one payload slice is
// used, depending on Kind. At most one event per operation has Done set and no
// event follows it.
type Event struct {
	OperationID uint64
	Kind        Kind
	Mode        BatchMode
	Done        bool
	Counters    Counters

	Names   []search.NameResult
	Files   []search.ContentResult
	Entries []fsutil.Entry
}

// Len returns the number of payload items.
func (e Event) Len() int {
	switch e.Kind {
	case KindNameSearch:
		return len(e.Names)
	case KindContentSearch:
		return len(e.Files)
	case KindEnumeration:
		return len(e.Entries)
	}
	return 0
}

type nameEventJSON struct {
	OperationID  uint64              `json:"operationId"`
	Mode         BatchMode           `json:"mode"`
	Results      []search.NameResult `json:"results"`
	Done         bool                `json:"done"`
	TotalScanned uint64              `json:"totalScanned"`
}

type contentEventJSON struct {
	OperationID   uint64                 `json:"operationId"`
	Mode          BatchMode              `json:"mode"`
	Results       []search.ContentResult `json:"results"`
	Done          bool                   `json:"done"`
	FilesSearched uint64                 `json:"filesSearched"`
	TotalMatches  uint64                 `json:"totalMatches"`
}

type entriesEventJSON struct {
	OperationID  uint64         `json:"operationId"`
	Mode         BatchMode      `json:"mode"`
	Entries      []fsutil.Entry `json:"entries"`
	Done         bool           `json:"done"`
	TotalScanned uint64         `json:"totalScanned"`
}

// MarshalJSON emits the wire shape for the event's kind. Payloads are never null.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindContentSearch:
		files := e.Files
		if files == nil {
			files = []search.ContentResult{}
		}
		return json.Marshal(contentEventJSON{
			OperationID:   e.OperationID,
			Mode:          e.Mode,
			Results:       files,
			Done:          e.Done,
			FilesSearched: e.Counters.FilesSearched,
			TotalMatches:  e.Counters.TotalMatches,
		})
	case KindEnumeration:
		entries := e.Entries
		if entries == nil {
			entries = []fsutil.Entry{}
		}
		return json.Marshal(entriesEventJSON{
			OperationID:  e.OperationID,
			Mode:         e.Mode,
			Entries:      entries,
			Done:         e.Done,
			TotalScanned: e.Counters.TotalScanned,
		})
	default:
		names := e.Names
		if names == nil {
			names = []search.NameResult{}
		}
		return json.Marshal(nameEventJSON{
			OperationID:  e.OperationID,
			Mode:         e.Mode,
			Results:      names,
			Done:         e.Done,
			TotalScanned: e.Counters.TotalScanned,
		})
	}
}
