package manager

import (
	"fmt"

	"github.com/blackwell-systems/brewfile/internal/logging"
	"github.com/blackwell-systems/brewfile/internal/store"
)

// entry is one journal row in progress. Journal failures are logged and
// never change the outcome of the operation being recorded.
type entry struct {
	journal *store.Store
	op      store.Operation
	active  bool
}

func (m *Manager) begin(kind string) *entry {
	e := &entry{journal: m.journal, op: store.Operation{Kind: kind, Hostname: m.hostname}}
	if m.journal == nil {
		return e
	}
	id, err := m.journal.StartOperation(kind, m.hostname)
	if err != nil {
		logging.GetLogger("journal").Warn().Err(err).Str("kind", kind).Msg("Could not record operation")
		return e
	}
	e.op.ID = id
	e.active = true
	return e
}

func (e *entry) finish(outcome string, err error) {
	if !e.active {
		return
	}
	e.active = false
	e.op.Outcome = outcome
	if err != nil {
		e.op.Detail = err.Error()
	}
	if ferr := e.journal.FinishOperation(&e.op); ferr != nil {
		logging.GetLogger("journal").Warn().Err(ferr).Int64("id", e.op.ID).Msg("Could not record operation outcome")
	}
}

func (e *entry) detail(format string, args ...any) {
	e.op.Detail = fmt.Sprintf(format, args...)
}

// History returns the most recent journal rows.
func (m *Manager) History(limit int) ([]*store.Operation, error) {
	if m.journal == nil {
		return nil, fmt.Errorf("operation journal is not available")
	}
	return m.journal.ListOperations(limit)
}
