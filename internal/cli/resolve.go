package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/alexanderramin/ganttly/internal/store"
)

// resolveProjectID matches input against open projects: exact id, then id
// prefix, then case-insensitive name.
func resolveProjectID(s *store.Store, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("project ID is required")
	}
	projects := s.Projects()

	for _, p := range projects {
		if p.ID == input {
			return p.ID, nil
		}
	}

	var matches []string
	for _, p := range projects {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}
	if len(matches) == 0 {
		for _, p := range projects {
			if strings.EqualFold(p.Name, input) {
				matches = append(matches, p.ID)
			}
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project %q is ambiguous (%d matches)", input, len(matches))
	}
}

// activeProject returns a copy of the active project or an error telling
// the user how to get one.
func activeProject(s *store.Store) (*domain.Project, error) {
	p := s.CurrentProject()
	if p == nil {
		return nil, fmt.Errorf("no active project; create one with 'project new'")
	}
	return p, nil
}

// nextEntityID returns prefix followed by one more than the highest numeric
// suffix among ids carrying that prefix, such as T4 after T1..T3.
func nextEntityID(prefix string, ids []string) string {
	highest := 0
	for _, id := range ids {
		rest, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > highest {
			highest = n
		}
	}
	return prefix + strconv.Itoa(highest+1)
}

func taskIDs(p *domain.Project) []string {
	out := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		out[i] = t.ID
	}
	return out
}

func resourceIDs(p *domain.Project) []string {
	out := make([]string, len(p.Resources))
	for i, r := range p.Resources {
		out[i] = r.ID
	}
	return out
}

// parseOptionalDate parses a YYYY-MM-DD flag value; empty means nil.
func parseOptionalDate(flag, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s date %q: use YYYY-MM-DD", flag, value)
	}
	return &t, nil
}

// splitList turns "a, b,c" into [a b c], dropping blanks.
func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
