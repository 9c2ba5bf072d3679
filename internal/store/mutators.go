package store

import (
	"strings"

	"github.com/alexanderramin/ganttly/internal/domain"
)

// All mutators act on the active project and are silent no-ops without one
// or after Close.
// Every call marks the project dirty and recomputes its progress, including
// updates and deletes whose id matches nothing. Only task and resource
// changes are recorded in the undo history.

// mutate runs fn against the active project under the lock, applies the
// edit transition and notifies observers. fn reports whether it pushed an
// undo item.
func (s *Store) mutate(fn func(p *domain.Project) (recorded bool)) {
	s.mu.Lock()
	if s.current == nil || s.closed {
		s.mu.Unlock()
		return
	}
	recorded := fn(s.current)
	s.touchLocked()
	id := s.current.ID
	s.mu.Unlock()

	events := []Event{
		{Kind: EventProjectChanged, ProjectID: id},
		{Kind: EventStateChanged, ProjectID: id},
	}
	if recorded {
		events = append(events, Event{Kind: EventHistoryChanged, ProjectID: id})
	}
	s.notify(events...)
}

// ── tasks ───────────────────────────────────────────────────────────────────

func (s *Store) AddTask(t domain.Task) {
	t = t.Clone()
	s.mutate(func(p *domain.Project) bool {
		s.history.push(UndoItem{Kind: domain.UndoAddTask, TargetID: t.ID, After: t.Clone()})
		s.appendTaskLocked(t)
		return true
	})
}

// UpdateTask replaces the task with id. The previous value is recorded only
// when the id exists.
func (s *Store) UpdateTask(id string, t domain.Task) {
	t = t.Clone()
	s.mutate(func(p *domain.Project) bool {
		i := p.TaskIndex(id)
		if i < 0 {
			return false
		}
		s.history.push(UndoItem{Kind: domain.UndoUpdateTask, TargetID: id, Before: p.Tasks[i].Clone(), After: t.Clone()})
		s.replaceTaskLocked(id, t)
		return true
	})
}

func (s *Store) DeleteTask(id string) {
	s.mutate(func(p *domain.Project) bool {
		i := p.TaskIndex(id)
		if i < 0 {
			return false
		}
		s.history.push(UndoItem{Kind: domain.UndoDeleteTask, TargetID: id, Before: p.Tasks[i].Clone()})
		s.removeTaskLocked(id)
		return true
	})
}

func (s *Store) appendTaskLocked(t domain.Task) {
	s.current.Tasks = append(s.current.Tasks, t.Clone())
}

func (s *Store) replaceTaskLocked(id string, t domain.Task) {
	if i := s.current.TaskIndex(id); i >= 0 {
		s.current.Tasks[i] = t.Clone()
	}
}

func (s *Store) removeTaskLocked(id string) {
	if i := s.current.TaskIndex(id); i >= 0 {
		s.current.Tasks = append(s.current.Tasks[:i], s.current.Tasks[i+1:]...)
	}
}

// ── resources ───────────────────────────────────────────────────────────────

func (s *Store) AddResource(r domain.Resource) {
	s.mutate(func(p *domain.Project) bool {
		s.history.push(UndoItem{Kind: domain.UndoAddResource, TargetID: r.ID, After: r})
		s.appendResourceLocked(r)
		return true
	})
}

func (s *Store) UpdateResource(id string, r domain.Resource) {
	s.mutate(func(p *domain.Project) bool {
		i := p.ResourceIndex(id)
		if i < 0 {
			return false
		}
		s.history.push(UndoItem{Kind: domain.UndoUpdateResource, TargetID: id, Before: p.Resources[i], After: r})
		s.replaceResourceLocked(id, r)
		return true
	})
}

func (s *Store) DeleteResource(id string) {
	s.mutate(func(p *domain.Project) bool {
		i := p.ResourceIndex(id)
		if i < 0 {
			return false
		}
		s.history.push(UndoItem{Kind: domain.UndoDeleteResource, TargetID: id, Before: p.Resources[i]})
		s.removeResourceLocked(id)
		return true
	})
}

func (s *Store) appendResourceLocked(r domain.Resource) {
	s.current.Resources = append(s.current.Resources, r)
}

func (s *Store) replaceResourceLocked(id string, r domain.Resource) {
	if i := s.current.ResourceIndex(id); i >= 0 {
		s.current.Resources[i] = r
	}
}

func (s *Store) removeResourceLocked(id string) {
	if i := s.current.ResourceIndex(id); i >= 0 {
		s.current.Resources = append(s.current.Resources[:i], s.current.Resources[i+1:]...)
	}
}

// ── costs ───────────────────────────────────────────────────────────────────

func (s *Store) AddCost(c domain.CostRecord) {
	c = c.Clone()
	s.mutate(func(p *domain.Project) bool {
		p.Costs = append(p.Costs, c)
		return false
	})
}

func (s *Store) UpdateCost(id string, c domain.CostRecord) {
	c = c.Clone()
	s.mutate(func(p *domain.Project) bool {
		if i := p.CostIndex(id); i >= 0 {
			p.Costs[i] = c
		}
		return false
	})
}

func (s *Store) DeleteCost(id string) {
	s.mutate(func(p *domain.Project) bool {
		if i := p.CostIndex(id); i >= 0 {
			p.Costs = append(p.Costs[:i], p.Costs[i+1:]...)
		}
		return false
	})
}

// ── risks ───────────────────────────────────────────────────────────────────

func (s *Store) AddRisk(r domain.Risk) {
	s.mutate(func(p *domain.Project) bool {
		p.Risks = append(p.Risks, r)
		return false
	})
}

func (s *Store) UpdateRisk(id string, r domain.Risk) {
	s.mutate(func(p *domain.Project) bool {
		if i := p.RiskIndex(id); i >= 0 {
			p.Risks[i] = r
		}
		return false
	})
}

func (s *Store) DeleteRisk(id string) {
	s.mutate(func(p *domain.Project) bool {
		if i := p.RiskIndex(id); i >= 0 {
			p.Risks = append(p.Risks[:i], p.Risks[i+1:]...)
		}
		return false
	})
}

// ── milestones, budget, header ──────────────────────────────────────────────

func (s *Store) AddMilestone(m domain.Milestone) {
	m = m.Clone()
	s.mutate(func(p *domain.Project) bool {
		p.Milestones = append(p.Milestones, m)
		return false
	})
}

func (s *Store) UpdateMilestone(id string, m domain.Milestone) {
	m = m.Clone()
	s.mutate(func(p *domain.Project) bool {
		if i := p.MilestoneIndex(id); i >= 0 {
			p.Milestones[i] = m
		}
		return false
	})
}

func (s *Store) DeleteMilestone(id string) {
	s.mutate(func(p *domain.Project) bool {
		if i := p.MilestoneIndex(id); i >= 0 {
			p.Milestones = append(p.Milestones[:i], p.Milestones[i+1:]...)
		}
		return false
	})
}

func (s *Store) SetBudget(b domain.Budget) {
	s.mutate(func(p *domain.Project) bool {
		p.Budget = b
		return false
	})
}

// RenameProject changes the active project's name. Blank names are
// rejected without touching state.
func (s *Store) RenameProject(name string) error {
	name = strings.TrimSpace(name)
	candidate := &domain.Project{Name: name}
	if err := candidate.ValidateName(); err != nil {
		return err
	}
	if err := s.Ready(); err != nil {
		return err
	}
	s.mutate(func(p *domain.Project) bool {
		p.Name = name
		return false
	})
	return nil
}
