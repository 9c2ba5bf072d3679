package domain

import (
	"slices"
	"time"
)

type Task struct {
	ID           string     `json:"id" yaml:"id"`
	Name         string     `json:"name" yaml:"name"`
	Start        *time.Time `json:"start,omitempty" yaml:"start,omitempty"`
	End          *time.Time `json:"end,omitempty" yaml:"end,omitempty"`
	Progress     float64    `json:"progress" yaml:"progress"`
	Status       TaskStatus `json:"status" yaml:"status"`
	Dependencies []string   `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	ResourceIDs  []string   `json:"resource_ids,omitempty" yaml:"resource_ids,omitempty"`
	Notes        string     `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// EntityID implements Entity.
func (t Task) EntityID() string { return t.ID }

// IsComplete reports whether the task counts as fully done.
func (t Task) IsComplete() bool {
	return t.Status == TaskDone || t.Progress >= 100
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	t.Start = cloneTime(t.Start)
	t.End = cloneTime(t.End)
	t.Dependencies = slices.Clone(t.Dependencies)
	t.ResourceIDs = slices.Clone(t.ResourceIDs)
	return t
}

type Resource struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Role       string  `json:"role,omitempty" yaml:"role,omitempty"`
	Email      string  `json:"email,omitempty" yaml:"email,omitempty"`
	HourlyRate float64 `json:"hourly_rate,omitempty" yaml:"hourly_rate,omitempty"`
	Capacity   float64 `json:"capacity,omitempty" yaml:"capacity,omitempty"`
}

// EntityID implements Entity.
func (r Resource) EntityID() string { return r.ID }

type CostRecord struct {
	ID          string     `json:"id" yaml:"id"`
	Description string     `json:"description" yaml:"description"`
	Category    string     `json:"category,omitempty" yaml:"category,omitempty"`
	Amount      float64    `json:"amount" yaml:"amount"`
	Currency    string     `json:"currency,omitempty" yaml:"currency,omitempty"`
	IncurredOn  *time.Time `json:"incurred_on,omitempty" yaml:"incurred_on,omitempty"`
	TaskID      string     `json:"task_id,omitempty" yaml:"task_id,omitempty"`
}

func (c CostRecord) Clone() CostRecord {
	c.IncurredOn = cloneTime(c.IncurredOn)
	return c
}

type Risk struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Probability float64    `json:"probability" yaml:"probability"`
	Impact      int        `json:"impact" yaml:"impact"`
	Mitigation  string     `json:"mitigation,omitempty" yaml:"mitigation,omitempty"`
	Owner       string     `json:"owner,omitempty" yaml:"owner,omitempty"`
	Status      RiskStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// Exposure is probability times impact.
func (r Risk) Exposure() float64 {
	return r.Probability * float64(r.Impact)
}

type Milestone struct {
	ID   string     `json:"id" yaml:"id"`
	Name string     `json:"name" yaml:"name"`
	Due  *time.Time `json:"due,omitempty" yaml:"due,omitempty"`
	Done bool       `json:"done" yaml:"done"`
}

func (m Milestone) Clone() Milestone {
	m.Due = cloneTime(m.Due)
	return m
}

type Team struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	MemberIDs []string `json:"member_ids,omitempty" yaml:"member_ids,omitempty"`
}

func (t Team) Clone() Team {
	t.MemberIDs = slices.Clone(t.MemberIDs)
	return t
}

type Budget struct {
	Total       float64 `json:"total" yaml:"total"`
	Currency    string  `json:"currency,omitempty" yaml:"currency,omitempty"`
	Contingency float64 `json:"contingency,omitempty" yaml:"contingency,omitempty"`
}

type Attachment struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	MediaType string `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	Data      []byte `json:"data,omitempty" yaml:"data,omitempty"`
}

func (a Attachment) Clone() Attachment {
	a.Data = slices.Clone(a.Data)
	return a
}

// Entity is a value the undo history can snapshot: a Task or a Resource.
type Entity interface {
	EntityID() string
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
