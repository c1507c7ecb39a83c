package registry

import "time"

// Status represents the lifecycle state of a work item.
type Status string

const (
	// StatusUnclaimed indicates the item is waiting to be claimed.
	StatusUnclaimed Status = "unclaimed"

	// StatusClaimed indicates an agent holds the item.
	StatusClaimed Status = "claimed"

	// StatusBlocked indicates the item was set aside by an external
	// actor. The claim engine never drives items into or out of this
	// state.
	StatusBlocked Status = "blocked"

	// StatusReview indicates the item awaits reviewer approval. Items
	// enter review through external tooling; the engine only consumes
	// the state via approve.
	StatusReview Status = "review"

	// StatusDone indicates the item is complete. Terminal.
	StatusDone Status = "done"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final state.
func (s Status) IsTerminal() bool {
	return s == StatusDone
}

// Priority orders items for claim selection. It never affects
// eligibility, only the order candidates are considered in.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the sort rank of the priority; lower sorts earlier.
// Unknown priorities rank after low so malformed records never jump
// the queue.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// WorkItem is one unit of work in the shared backlog.
type WorkItem struct {
	// ID is the unique, stable key into the registry and the
	// dependency map.
	ID string `json:"id"`

	// Title is the display string.
	Title string `json:"title"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// Priority is the claim-ordering rank.
	Priority Priority `json:"priority"`

	// ClaimedBy is the agent holding the item. Present iff status is
	// claimed or review, and authoritative for who may release it.
	ClaimedBy string `json:"claimed_by,omitempty"`

	// ClaimedAt is when the item was claimed.
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`

	// CompletedAt is when the item reached done.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// BlockedReason is set by whoever moved the item to blocked.
	BlockedReason string `json:"blocked_reason,omitempty"`

	// ReviewerID is stamped on approval.
	ReviewerID string `json:"reviewer_id,omitempty"`

	// Capability is an optional tag matched against the claim
	// --capability filter.
	Capability string `json:"capability,omitempty"`

	// SkillLevel is an optional tag matched against the claim
	// --skill-level filter.
	SkillLevel string `json:"skill_level,omitempty"`
}

// Snapshot is the full on-disk registry state: every work item, in
// registry order. Registry order is meaningful: it is the tie-break for
// equal-priority claim candidates.
type Snapshot struct {
	Tasks []WorkItem `json:"tasks"`
}

// Find returns a pointer to the item with the given id, or nil if absent.
// The pointer aliases the snapshot's backing slice, so mutations are
// visible to a subsequent Save.
func (s *Snapshot) Find(taskID string) *WorkItem {
	for i := range s.Tasks {
		if s.Tasks[i].ID == taskID {
			return &s.Tasks[i]
		}
	}
	return nil
}

// StatusSet returns a point-in-time copy of every item's status keyed by
// id. Claim eligibility checks use this so that mutations made later in
// the same pass cannot influence earlier decisions.
func (s *Snapshot) StatusSet() map[string]Status {
	set := make(map[string]Status, len(s.Tasks))
	for i := range s.Tasks {
		set[s.Tasks[i].ID] = s.Tasks[i].Status
	}
	return set
}
