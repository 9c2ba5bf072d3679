package domain

import "time"

// CurrentFileVersion is written into every package manifest.
const CurrentFileVersion = "1.0"

// Manifest describes a project package.
type Manifest struct {
	ProjectUUID        string    `json:"project_uuid" yaml:"project_uuid"`
	FileVersion        string    `json:"file_version" yaml:"file_version"`
	CreatedPlatform    string    `json:"created_platform" yaml:"created_platform"`
	CreatedWithVersion string    `json:"created_with_version" yaml:"created_with_version"`
	CreatedAt          time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" yaml:"updated_at"`
}

// Package is the bundle exchanged with snapshot storage and project files.
// Project carries the header, costs and risks; the remaining collections are
// lifted to the top level.
type Package struct {
	Manifest    Manifest     `json:"manifest" yaml:"manifest"`
	Project     Project      `json:"project" yaml:"project"`
	Tasks       []Task       `json:"tasks" yaml:"tasks"`
	Resources   []Resource   `json:"resources" yaml:"resources"`
	Milestones  []Milestone  `json:"milestones" yaml:"milestones"`
	Teams       []Team       `json:"teams" yaml:"teams"`
	Budget      Budget       `json:"budget" yaml:"budget"`
	Attachments []Attachment `json:"attachments" yaml:"attachments"`
}

// NewPackage splits a project into a package. The project is cloned.
func NewPackage(p *Project, m Manifest) *Package {
	c := p.Clone()
	pkg := &Package{
		Manifest:    m,
		Tasks:       nonNil(c.Tasks),
		Resources:   nonNil(c.Resources),
		Milestones:  nonNil(c.Milestones),
		Teams:       nonNil(c.Teams),
		Budget:      c.Budget,
		Attachments: nonNil(c.Attachments),
	}
	c.Tasks, c.Resources, c.Milestones, c.Teams, c.Attachments = nil, nil, nil, nil, nil
	c.Budget = Budget{}
	pkg.Project = *c
	return pkg
}

// ToProject reassembles the project held by the package.
func (pkg *Package) ToProject() *Project {
	p := pkg.Project.Clone()
	p.Tasks = cloneEach(pkg.Tasks, Task.Clone)
	p.Resources = cloneEach(pkg.Resources, func(r Resource) Resource { return r })
	p.Milestones = cloneEach(pkg.Milestones, Milestone.Clone)
	p.Teams = cloneEach(pkg.Teams, Team.Clone)
	p.Budget = pkg.Budget
	p.Attachments = cloneEach(pkg.Attachments, Attachment.Clone)
	if p.ID == "" {
		p.ID = pkg.Manifest.ProjectUUID
	}
	return p
}

// SnapshotInfo is a listing entry for a durable snapshot.
type SnapshotInfo struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	ProjectID string       `json:"project_id"`
	CreatedAt time.Time    `json:"created_at"`
	Type      SnapshotType `json:"type"`
	SizeBytes int          `json:"size_bytes,omitempty"`
}

// RecentProject is an entry of the recently opened projects list.
type RecentProject struct {
	FileName    string
	FilePath    string
	ProjectUUID string
	IsTemporary bool
	OpenedAt    time.Time
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
