package tx

import (
	"fmt"

	"github.com/settleng/goledgerd/internal/core/keylet"
)

// Action is the pending disposition of a tracked entry.
type Action int

const (
	ActionNone Action = iota
	ActionInsert
	ActionUpdate
	ActionErase
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionErase:
		return "erase"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// TrackedEntry records one entry touched during apply: the bytes as they
// were in the base view and the bytes as the transaction left them.
type TrackedEntry struct {
	Keylet   keylet.Keylet
	Action   Action
	Original []byte
	Current  []byte
}

// ApplyStateTable buffers every mutation a transaction makes. Nothing
// reaches the base view until Apply, so a failed transaction leaves no
// trace.
type ApplyStateTable struct {
	base  LedgerView
	items map[[32]byte]*TrackedEntry
}

func NewApplyStateTable(base LedgerView) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[[32]byte]*TrackedEntry),
	}
}

func (s *ApplyStateTable) track(k keylet.Keylet) (*TrackedEntry, error) {
	if e, ok := s.items[k.Key]; ok {
		return e, nil
	}
	data, err := s.base.Read(k)
	if err != nil {
		return nil, err
	}
	e := &TrackedEntry{Keylet: k, Original: data, Current: data}
	s.items[k.Key] = e
	return e, nil
}

// Read returns the entry as the transaction currently sees it.
func (s *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	e, err := s.track(k)
	if err != nil {
		return nil, err
	}
	if e.Action == ActionErase {
		return nil, nil
	}
	return e.Current, nil
}

// Exists reports whether the entry exists in the transaction's view.
func (s *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	data, err := s.Read(k)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// Insert stages a new entry. It is an error if the entry already exists.
func (s *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	e, err := s.track(k)
	if err != nil {
		return err
	}
	switch e.Action {
	case ActionErase:
		// Erased then re-created within one transaction.
		e.Action = ActionUpdate
		if e.Original == nil {
			e.Action = ActionInsert
		}
	case ActionNone:
		if e.Current != nil {
			return fmt.Errorf("tx: insert over existing entry %s", e.Keylet.Kind)
		}
		e.Action = ActionInsert
	default:
		return fmt.Errorf("tx: insert over %s entry %s", e.Action, e.Keylet.Kind)
	}
	e.Current = data
	return nil
}

// Update stages a modification of an existing entry.
func (s *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	e, err := s.track(k)
	if err != nil {
		return err
	}
	switch e.Action {
	case ActionErase:
		return fmt.Errorf("tx: update of erased entry %s", e.Keylet.Kind)
	case ActionNone:
		if e.Current == nil {
			return fmt.Errorf("tx: update of missing entry %s", e.Keylet.Kind)
		}
		e.Action = ActionUpdate
	}
	e.Current = data
	return nil
}

// Erase stages a deletion.
func (s *ApplyStateTable) Erase(k keylet.Keylet) error {
	e, err := s.track(k)
	if err != nil {
		return err
	}
	if e.Current == nil && e.Action != ActionInsert {
		return fmt.Errorf("tx: erase of missing entry %s", e.Keylet.Kind)
	}
	if e.Action == ActionInsert {
		// Never existed in the base view.
		e.Action = ActionNone
		e.Current = nil
		delete(s.items, k.Key)
		return nil
	}
	e.Action = ActionErase
	e.Current = nil
	return nil
}

// Apply verifies conservation over the tracked entries and commits them
// to the base view. On any error nothing is committed.
func (s *ApplyStateTable) Apply() error {
	if err := checkConservation(s.items); err != nil {
		return err
	}
	for _, e := range s.items {
		var err error
		switch e.Action {
		case ActionInsert:
			err = s.base.Insert(e.Keylet, e.Current)
		case ActionUpdate:
			err = s.base.Update(e.Keylet, e.Current)
		case ActionErase:
			err = s.base.Erase(e.Keylet)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Entries returns the tracked entries with a staged action.
func (s *ApplyStateTable) Entries() []*TrackedEntry {
	out := make([]*TrackedEntry, 0, len(s.items))
	for _, e := range s.items {
		if e.Action != ActionNone {
			out = append(out, e)
		}
	}
	return out
}
