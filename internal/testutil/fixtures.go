package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/google/uuid"
)

var testIDCounter atomic.Int64

func nextID(prefix string) string {
	return fmt.Sprintf("%s-%03d", prefix, testIDCounter.Add(1))
}

// Project options
type ProjectOption func(*domain.Project)

func WithTasks(tasks ...domain.Task) ProjectOption {
	return func(p *domain.Project) {
		p.Tasks = append(p.Tasks, tasks...)
		p.Progress = domain.CalculateProjectProgress(p.Tasks)
	}
}

func WithResources(resources ...domain.Resource) ProjectOption {
	return func(p *domain.Project) {
		p.Resources = append(p.Resources, resources...)
	}
}

func WithBudget(total float64, currency string) ProjectOption {
	return func(p *domain.Project) {
		p.Budget = domain.Budget{Total: total, Currency: currency}
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := domain.NewProject(uuid.New().String(), name, now)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task options
type TaskOption func(*domain.Task)

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithTaskProgress(pct float64) TaskOption {
	return func(t *domain.Task) {
		t.Progress = pct
	}
}

func WithTaskID(id string) TaskOption {
	return func(t *domain.Task) {
		t.ID = id
	}
}

func WithDependencies(ids ...string) TaskOption {
	return func(t *domain.Task) {
		t.Dependencies = ids
	}
}

func WithSchedule(start, end time.Time) TaskOption {
	return func(t *domain.Task) {
		t.Start = &start
		t.End = &end
	}
}

func NewTestTask(name string, opts ...TaskOption) domain.Task {
	t := domain.Task{
		ID:     nextID("task"),
		Name:   name,
		Status: domain.TaskTodo,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// CompletedTask is NewTestTask with status done.
func CompletedTask(name string, opts ...TaskOption) domain.Task {
	return NewTestTask(name, append([]TaskOption{WithTaskStatus(domain.TaskDone)}, opts...)...)
}

// Resource options
type ResourceOption func(*domain.Resource)

func WithRole(role string) ResourceOption {
	return func(r *domain.Resource) {
		r.Role = role
	}
}

func WithHourlyRate(rate float64) ResourceOption {
	return func(r *domain.Resource) {
		r.HourlyRate = rate
	}
}

func NewTestResource(name string, opts ...ResourceOption) domain.Resource {
	r := domain.Resource{
		ID:       nextID("res"),
		Name:     name,
		Capacity: 1,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func NewTestCost(description string, amount float64) domain.CostRecord {
	return domain.CostRecord{
		ID:          nextID("cost"),
		Description: description,
		Amount:      amount,
		Currency:    "EUR",
	}
}

func NewTestRisk(title string, probability float64, impact int) domain.Risk {
	return domain.Risk{
		ID:          nextID("risk"),
		Title:       title,
		Probability: probability,
		Impact:      impact,
		Status:      domain.RiskOpen,
	}
}
