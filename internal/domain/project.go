package domain

import (
	"fmt"
	"strings"
	"time"
)

// Project is the unit the store edits: a header plus its entity collections.
// Progress is derived from Tasks and is never set by callers.
type Project struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	CreatedAt   time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" yaml:"updated_at"`
	Progress    float64      `json:"progress" yaml:"progress"`
	Tasks       []Task       `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	Resources   []Resource   `json:"resources,omitempty" yaml:"resources,omitempty"`
	Costs       []CostRecord `json:"costs,omitempty" yaml:"costs,omitempty"`
	Risks       []Risk       `json:"risks,omitempty" yaml:"risks,omitempty"`
	Milestones  []Milestone  `json:"milestones,omitempty" yaml:"milestones,omitempty"`
	Teams       []Team       `json:"teams,omitempty" yaml:"teams,omitempty"`
	Budget      Budget       `json:"budget" yaml:"budget"`
	Attachments []Attachment `json:"attachments,omitempty" yaml:"attachments,omitempty"`
}

// NewProject returns an empty project stamped with now.
func NewProject(id, name string, now time.Time) *Project {
	return &Project{
		ID:        id,
		Name:      CoalesceStr(strings.TrimSpace(name), "Untitled Project"),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateName checks that the project name is usable as a display label.
func (p *Project) ValidateName() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("project name is required")
	}
	return nil
}

// DisplayID returns the first 8 characters of ID for display.
func (p *Project) DisplayID() string {
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}

// TaskIndex returns the index of the task with the given id, or -1.
func (p *Project) TaskIndex(id string) int {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// ResourceIndex returns the index of the resource with the given id, or -1.
func (p *Project) ResourceIndex(id string) int {
	for i := range p.Resources {
		if p.Resources[i].ID == id {
			return i
		}
	}
	return -1
}

func (p *Project) CostIndex(id string) int {
	for i := range p.Costs {
		if p.Costs[i].ID == id {
			return i
		}
	}
	return -1
}

func (p *Project) RiskIndex(id string) int {
	for i := range p.Risks {
		if p.Risks[i].ID == id {
			return i
		}
	}
	return -1
}

func (p *Project) MilestoneIndex(id string) int {
	for i := range p.Milestones {
		if p.Milestones[i].ID == id {
			return i
		}
	}
	return -1
}

// TotalCost sums all cost records regardless of currency.
func (p *Project) TotalCost() float64 {
	var total float64
	for _, c := range p.Costs {
		total += c.Amount
	}
	return total
}

// Clone returns a deep copy; callers outside the store only ever see clones.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	c.Tasks = cloneEach(p.Tasks, Task.Clone)
	c.Resources = cloneEach(p.Resources, func(r Resource) Resource { return r })
	c.Costs = cloneEach(p.Costs, CostRecord.Clone)
	c.Risks = cloneEach(p.Risks, func(r Risk) Risk { return r })
	c.Milestones = cloneEach(p.Milestones, Milestone.Clone)
	c.Teams = cloneEach(p.Teams, Team.Clone)
	c.Attachments = cloneEach(p.Attachments, Attachment.Clone)
	return &c
}

func cloneEach[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}
