package engagement

type MutationState string

const (
	StateIdle       MutationState = "idle"
	StatePending    MutationState = "pending"
	StateCommitted  MutationState = "committed"
	StateRolledBack MutationState = "rolled-back"
)

// Mutation is the lifecycle of one optimistic operation:
// idle -> pending -> committed | rolled-back. Rollback is a first-class
// transition, not a catch-all; illegal transitions are refused.
type Mutation struct {
	Op    string
	State MutationState
}

func NewMutation(op string) *Mutation {
	return &Mutation{Op: op, State: StateIdle}
}

func (m *Mutation) Begin() bool {
	if m.State != StateIdle {
		return false
	}
	m.State = StatePending
	return true
}

func (m *Mutation) Commit() bool {
	if m.State != StatePending {
		return false
	}
	m.State = StateCommitted
	return true
}

func (m *Mutation) Rollback() bool {
	if m.State != StatePending {
		return false
	}
	m.State = StateRolledBack
	return true
}
