// Package lifecycle implements status transition tables shared by the
// shift, job and invoice models.
package lifecycle

import (
	"fmt"
	"slices"
)

// TransitionError reports a status change the table does not allow.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot transition from %s to %s", e.Entity, e.From, e.To)
}

// Machine is a finite set of statuses with the allowed next statuses for each.
// A status with an empty set is terminal.
type Machine[S ~string] struct {
	entity      string
	transitions map[S][]S
}

func New[S ~string](entity string, transitions map[S][]S) *Machine[S] {
	table := make(map[S][]S, len(transitions))
	for from, to := range transitions {
		table[from] = slices.Clone(to)
	}
	return &Machine[S]{entity: entity, transitions: table}
}

func (m *Machine[S]) Entity() string {
	return m.entity
}

// Known reports whether status appears in the table.
func (m *Machine[S]) Known(status S) bool {
	_, ok := m.transitions[status]
	return ok
}

func (m *Machine[S]) Allowed(from S) []S {
	return slices.Clone(m.transitions[from])
}

func (m *Machine[S]) Can(from, to S) bool {
	return slices.Contains(m.transitions[from], to)
}

func (m *Machine[S]) Terminal(status S) bool {
	return m.Known(status) && len(m.transitions[status]) == 0
}

// Validate returns a *TransitionError when to is not reachable from from.
func (m *Machine[S]) Validate(from, to S) error {
	if m.Can(from, to) {
		return nil
	}
	return &TransitionError{Entity: m.entity, From: string(from), To: string(to)}
}
