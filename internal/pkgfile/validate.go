package pkgfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/ganttly/internal/domain"
)

var (
	// ErrInvalidPackage wraps every structural validation failure.
	ErrInvalidPackage = errors.New("invalid project package")

	// ErrUnsupportedVersion is returned for packages written by an
	// incompatible major file version.
	ErrUnsupportedVersion = errors.New("unsupported package file version")
)

var validRiskStatuses = map[string]bool{"open": true, "mitigated": true, "closed": true}

// Validate checks a package before it is loaded or written. All problems are
// reported together.
func Validate(pkg *domain.Package) error {
	if pkg == nil {
		return fmt.Errorf("%w: empty package", ErrInvalidPackage)
	}
	if err := validateVersion(pkg.Manifest.FileVersion); err != nil {
		return err
	}
	errs := ValidatePackage(pkg)
	if len(errs) == 0 {
		return nil
	}
	return formatValidationErrors(errs)
}

// ValidatePackage returns every validation error found in pkg.
func ValidatePackage(pkg *domain.Package) []error {
	var errs []error

	errs = append(errs, validateStructure(pkg)...)
	for i, r := range pkg.Resources {
		if r.HourlyRate < 0 {
			errs = append(errs, fmt.Errorf("resources[%d].hourly_rate must not be negative", i))
		}
	}
	errs = append(errs, validateTasks(pkg.Tasks)...)
	errs = append(errs, validateCosts(pkg.Project.Costs)...)
	errs = append(errs, validateRisks(pkg.Project.Risks)...)
	if pkg.Budget.Total < 0 {
		errs = append(errs, fmt.Errorf("budget.total must not be negative"))
	}

	return errs
}

// validateForWrite checks what a file needs to be opened again: a
// supported version, a consistent manifest and unique entity ids.
func validateForWrite(pkg *domain.Package) error {
	if err := validateVersion(pkg.Manifest.FileVersion); err != nil {
		return err
	}
	if errs := validateStructure(pkg); len(errs) > 0 {
		return formatValidationErrors(errs)
	}
	return nil
}

func validateStructure(pkg *domain.Package) []error {
	errs := validateManifest(&pkg.Manifest, &pkg.Project)

	ids := func(prefix string, n int, id func(int) string) {
		seen := make(map[string]bool, n)
		for i := 0; i < n; i++ {
			errs = append(errs, checkID(fmt.Sprintf("%s[%d]", prefix, i), id(i), seen)...)
		}
	}
	ids("tasks", len(pkg.Tasks), func(i int) string { return pkg.Tasks[i].ID })
	ids("resources", len(pkg.Resources), func(i int) string { return pkg.Resources[i].ID })
	ids("project.costs", len(pkg.Project.Costs), func(i int) string { return pkg.Project.Costs[i].ID })
	ids("project.risks", len(pkg.Project.Risks), func(i int) string { return pkg.Project.Risks[i].ID })
	ids("milestones", len(pkg.Milestones), func(i int) string { return pkg.Milestones[i].ID })
	ids("teams", len(pkg.Teams), func(i int) string { return pkg.Teams[i].ID })
	ids("attachments", len(pkg.Attachments), func(i int) string { return pkg.Attachments[i].ID })

	return errs
}

func validateVersion(v string) error {
	major, _, _ := strings.Cut(v, ".")
	want, _, _ := strings.Cut(domain.CurrentFileVersion, ".")
	if major != want {
		return fmt.Errorf("%w: %q (this build reads %s.x)", ErrUnsupportedVersion, v, want)
	}
	return nil
}

func validateManifest(m *domain.Manifest, p *domain.Project) []error {
	var errs []error

	if m.ProjectUUID == "" {
		errs = append(errs, fmt.Errorf("manifest.project_uuid is required"))
	}
	if p.ID != "" && m.ProjectUUID != "" && p.ID != m.ProjectUUID {
		errs = append(errs, fmt.Errorf("project.id %q does not match manifest.project_uuid %q", p.ID, m.ProjectUUID))
	}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, fmt.Errorf("project.name is required"))
	}

	return errs
}

// validateTasks checks task fields. Dependencies and resource assignments
// may point at entities deleted since they were set; they are kept as-is.
func validateTasks(tasks []domain.Task) []error {
	var errs []error

	for i, t := range tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if !domain.ValidTaskStatuses[string(t.Status)] {
			errs = append(errs, fmt.Errorf("%s.status: invalid value %q", prefix, t.Status))
		}
		if t.Progress < 0 || t.Progress > 100 {
			errs = append(errs, fmt.Errorf("%s.progress must be between 0 and 100, got %v", prefix, t.Progress))
		}
		if t.Start != nil && t.End != nil && t.End.Before(*t.Start) {
			errs = append(errs, fmt.Errorf("%s.end must not be before start", prefix))
		}
		for _, dep := range t.Dependencies {
			if dep == t.ID {
				errs = append(errs, fmt.Errorf("%s.dependencies: task depends on itself", prefix))
			}
		}
	}

	return errs
}

func validateCosts(costs []domain.CostRecord) []error {
	var errs []error

	for i, c := range costs {
		prefix := fmt.Sprintf("project.costs[%d]", i)
		if c.Amount < 0 {
			errs = append(errs, fmt.Errorf("%s.amount must not be negative", prefix))
		}
	}

	return errs
}

func validateRisks(risks []domain.Risk) []error {
	var errs []error

	for i, r := range risks {
		prefix := fmt.Sprintf("project.risks[%d]", i)
		if r.Probability < 0 || r.Probability > 1 {
			errs = append(errs, fmt.Errorf("%s.probability must be between 0 and 1, got %v", prefix, r.Probability))
		}
		if r.Impact != 0 && (r.Impact < 1 || r.Impact > 5) {
			errs = append(errs, fmt.Errorf("%s.impact must be between 1 and 5, got %d", prefix, r.Impact))
		}
		if r.Status != "" && !validRiskStatuses[string(r.Status)] {
			errs = append(errs, fmt.Errorf("%s.status: invalid value %q", prefix, r.Status))
		}
	}

	return errs
}

func checkID(prefix, id string, seen map[string]bool) []error {
	if id == "" {
		return []error{fmt.Errorf("%s.id is required", prefix)}
	}
	if seen[id] {
		return []error{fmt.Errorf("%s.id: duplicate %q", prefix, id)}
	}
	seen[id] = true
	return nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("package validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%w: %s", ErrInvalidPackage, msg)
}
