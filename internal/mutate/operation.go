package mutate

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Phase is where an operation is in its lifecycle.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseApplying    Phase = "applying"
	PhaseReconciling Phase = "reconciling"
	PhaseRollingBack Phase = "rolling_back"
)

type Kind string

const (
	KindCreate     Kind = "create"
	KindUpdate     Kind = "update"
	KindDelete     Kind = "delete"
	KindBulkDelete Kind = "bulk_delete"
	KindBulkUpdate Kind = "bulk_update"
	KindSubtask    Kind = "subtask"
)

// Operation is the record of one logical mutation while it is in flight.
type Operation struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	IDs     []string  `json:"ids,omitempty"`
	Phase   Phase     `json:"phase"`
	Started time.Time `json:"started"`
}

func (o Operation) bulk() bool {
	return o.Kind == KindBulkDelete || o.Kind == KindBulkUpdate
}

func (o Operation) updating() bool {
	return o.Kind == KindUpdate || o.Kind == KindSubtask
}

func (c *Controller) begin(kind Kind, ids ...string) *Operation {
	o := &Operation{
		ID:      uuid.NewString(),
		Kind:    kind,
		IDs:     append([]string(nil), ids...),
		Phase:   PhaseIdle,
		Started: c.now(),
	}
	c.mu.Lock()
	c.ops[o.ID] = o
	c.gen++
	c.mu.Unlock()
	return o
}

func (c *Controller) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *Controller) setPhase(o *Operation, p Phase) {
	c.mu.Lock()
	o.Phase = p
	c.mu.Unlock()
	c.log.Debug().Str("op", o.ID).Str("kind", string(o.Kind)).Strs("ids", o.IDs).Str("phase", string(p)).Msg("mutation")
}

func (c *Controller) end(o *Operation) {
	c.mu.Lock()
	o.Phase = PhaseIdle
	delete(c.ops, o.ID)
	c.mu.Unlock()
}

// Operations returns the mutations currently in flight, oldest first.
func (c *Controller) Operations() []Operation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Operation, 0, len(c.ops))
	for _, o := range c.ops {
		cp := *o
		cp.IDs = append([]string(nil), o.IDs...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}

// IsUpdating reports whether any single-task update (including subtask edits) is in flight.
func (c *Controller) IsUpdating() bool {
	return c.any(func(o *Operation) bool { return o.updating() })
}

// IsDeleting reports whether a single delete of id is in flight.
func (c *Controller) IsDeleting(id string) bool {
	return c.any(func(o *Operation) bool {
		return o.Kind == KindDelete && len(o.IDs) == 1 && o.IDs[0] == id
	})
}

func (c *Controller) IsBulkOperation() bool {
	return c.any(func(o *Operation) bool { return o.bulk() })
}

func (c *Controller) IsCreating() bool {
	return c.any(func(o *Operation) bool { return o.Kind == KindCreate })
}

// Busy reports whether anything at all is in flight.
func (c *Controller) Busy() bool {
	return c.any(func(*Operation) bool { return true })
}

func (c *Controller) any(pred func(*Operation) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range c.ops {
		if pred(o) {
			return true
		}
	}
	return false
}
