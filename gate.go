package templateguard

import (
	"context"
	"errors"
)

// Outcome is the terminal state of one gate invocation.
type Outcome int

const (
	Accepted Outcome = iota
	Rejected
)

func (o Outcome) String() string {
	if o == Accepted {
		return "accepted"
	}
	return "rejected"
}

// Decision reports what the gate did with one proposed schema edit.
type Decision struct {
	Outcome Outcome
	// Previous is the version the candidate was checked against; nil when the
	// archive was empty and the candidate became the first entry.
	Previous *Version
	// Violations holds the complete list of compatibility violations when the
	// candidate was rejected.
	Violations Issues
}

// Gate guards the archive: every proposed schema edit passes through it
// exactly once and is either fully accepted (archived) or fully rejected
// (archive untouched). It is the only writer path to the archive.
type Gate struct {
	archive Archive
}

// NewGate wraps an archive with evolution enforcement.
func NewGate(a Archive) *Gate { return &Gate{archive: a} }

// Propose checks the candidate against the latest archived version and
// archives it when the transition is legal. An empty archive accepts the
// candidate as the first version without a compatibility check.
//
// The returned error is non-nil only for archive failures (including a
// concurrent writer winning the same version, surfaced as
// ErrDuplicateVersion); a rejection is reported through the Decision.
func (g *Gate) Propose(ctx context.Context, candidate *Schema) (Decision, error) {
	previous, err := g.archive.Latest(ctx)
	if err != nil {
		if !errors.Is(err, ErrEmptyArchive) {
			return Decision{}, err
		}
		if err := g.archive.Append(ctx, candidate); err != nil {
			return Decision{}, err
		}
		return Decision{Outcome: Accepted}, nil
	}

	res := Check(previous, candidate)
	if !res.OK() {
		return Decision{Outcome: Rejected, Previous: &previous.Version, Violations: res.Violations}, nil
	}
	if err := g.archive.Append(ctx, candidate); err != nil {
		return Decision{}, err
	}
	return Decision{Outcome: Accepted, Previous: &previous.Version}, nil
}
