package pkgfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/ganttly/internal/domain"
	"github.com/alexanderramin/ganttly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePackage() *domain.Package {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)
	ada := testutil.NewTestResource("Ada", testutil.WithRole("engineer"), testutil.WithHourlyRate(95))
	design := testutil.NewTestTask("Design", testutil.WithSchedule(start, end), testutil.WithTaskProgress(40))
	design.ResourceIDs = []string{ada.ID}
	build := testutil.NewTestTask("Build", testutil.WithDependencies(design.ID))

	p := testutil.NewTestProject("Apollo",
		testutil.WithTasks(design, build),
		testutil.WithResources(ada),
		testutil.WithBudget(25000, "EUR"),
	)
	cost := testutil.NewTestCost("Licences", 1200)
	cost.TaskID = design.ID
	p.Costs = []domain.CostRecord{cost}
	p.Risks = []domain.Risk{testutil.NewTestRisk("Vendor delay", 0.3, 4)}
	p.Milestones = []domain.Milestone{{ID: "m1", Name: "Beta", Due: &end}}
	p.Teams = []domain.Team{{ID: "core", Name: "Core", MemberIDs: []string{ada.ID}}}
	return testutil.BuildPackage(p)
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"plan.json", FormatJSON, false},
		{"/tmp/Plan.JSON", FormatJSON, false},
		{"plan.yaml", FormatYAML, false},
		{"plan.yml", FormatYAML, false},
		{"plan.xml", "", true},
		{"plan", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, err := FormatForPath(tc.path)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncodeDecode_BothFormats(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			pkg := samplePackage()
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, pkg, format))

			got, err := Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, pkg.Manifest.ProjectUUID, got.Manifest.ProjectUUID)
			assert.Equal(t, pkg.Project.Name, got.Project.Name)
			assert.Len(t, got.Tasks, 2)
			assert.Equal(t, pkg.Tasks[1].Dependencies, got.Tasks[1].Dependencies)
			require.NotNil(t, got.Tasks[0].Start)
			assert.True(t, pkg.Tasks[0].Start.Equal(*got.Tasks[0].Start))
			assert.Equal(t, pkg.Resources, got.Resources)
			assert.Equal(t, pkg.Project.Costs, got.Project.Costs)
			assert.Equal(t, pkg.Budget, got.Budget)

			p := got.ToProject()
			assert.Equal(t, float64(20), domain.CalculateProjectProgress(p.Tasks))
		})
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	pkg := samplePackage()
	data, err := Marshal(pkg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n  ", "snapshot payloads are compact")

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, pkg.Manifest.ProjectUUID, got.Project.ID)
}

func TestDecode_NormalizesDefaults(t *testing.T) {
	in := `{
  "manifest": {"project_uuid": "p-1"},
  "project": {"name": "Hand written"},
  "tasks": [{"id": "t1", "name": "First"}],
  "project_risks": []
}`
	pkg, err := Decode(strings.NewReader(in), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, domain.CurrentFileVersion, pkg.Manifest.FileVersion)
	assert.Equal(t, "p-1", pkg.Project.ID)
	assert.Equal(t, domain.TaskTodo, pkg.Tasks[0].Status)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader("{not json"), FormatJSON)
	assert.ErrorIs(t, err, ErrInvalidPackage)

	_, err = Decode(strings.NewReader("manifest: [unclosed"), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidPackage)
}

func TestValidate_UnsupportedVersion(t *testing.T) {
	pkg := samplePackage()
	pkg.Manifest.FileVersion = "2.0"
	assert.ErrorIs(t, Validate(pkg), ErrUnsupportedVersion)

	pkg.Manifest.FileVersion = "1.7"
	assert.NoError(t, Validate(pkg))
}

func TestValidatePackage_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Package)
		want   string
	}{
		{"missing uuid", func(p *domain.Package) { p.Manifest.ProjectUUID = "" }, "manifest.project_uuid is required"},
		{"id mismatch", func(p *domain.Package) { p.Project.ID = "other" }, "does not match manifest.project_uuid"},
		{"missing name", func(p *domain.Package) { p.Project.Name = " " }, "project.name is required"},
		{"duplicate task", func(p *domain.Package) { p.Tasks[1].ID = p.Tasks[0].ID }, "duplicate"},
		{"bad status", func(p *domain.Package) { p.Tasks[0].Status = "blocked" }, "invalid value \"blocked\""},
		{"progress range", func(p *domain.Package) { p.Tasks[0].Progress = 140 }, "progress must be between 0 and 100"},
		{"self dependency", func(p *domain.Package) { p.Tasks[1].Dependencies = []string{p.Tasks[1].ID} }, "depends on itself"},
		{"end before start", func(p *domain.Package) {
			early := p.Tasks[0].Start.Add(-time.Hour)
			p.Tasks[0].End = &early
		}, "end must not be before start"},
		{"risk probability", func(p *domain.Package) { p.Project.Risks[0].Probability = 1.5 }, "probability must be between 0 and 1"},
		{"risk impact", func(p *domain.Package) { p.Project.Risks[0].Impact = 9 }, "impact must be between 1 and 5"},
		{"negative cost", func(p *domain.Package) { p.Project.Costs[0].Amount = -10 }, "amount must not be negative"},
		{"duplicate team", func(p *domain.Package) { p.Teams = append(p.Teams, p.Teams[0]) }, "teams[1].id: duplicate"},
		{"negative budget", func(p *domain.Package) { p.Budget.Total = -1 }, "budget.total must not be negative"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pkg := samplePackage()
			tc.mutate(pkg)
			err := Validate(pkg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPackage)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidatePackage_ReportsAllErrors(t *testing.T) {
	pkg := samplePackage()
	pkg.Project.Name = ""
	pkg.Tasks[0].Progress = -5
	pkg.Resources[0].HourlyRate = -1

	errs := ValidatePackage(pkg)
	assert.Len(t, errs, 3)
}

func TestValidatePackage_DanglingReferencesAllowed(t *testing.T) {
	pkg := samplePackage()
	pkg.Tasks[1].Dependencies = []string{"deleted-task"}
	pkg.Tasks[0].ResourceIDs = []string{"deleted-resource"}
	pkg.Project.Costs[0].TaskID = "deleted-task"

	assert.Empty(t, ValidatePackage(pkg))
}

func TestWriteFileReadFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"apollo.json", "nested/apollo.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			pkg := samplePackage()
			require.NoError(t, WriteFile(path, pkg))

			got, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, pkg.Manifest.ProjectUUID, got.Manifest.ProjectUUID)
			assert.Len(t, got.Tasks, len(pkg.Tasks))

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			for _, e := range entries {
				assert.False(t, strings.HasPrefix(e.Name(), "."), "temporary file left behind: %s", e.Name())
			}
		})
	}
}

func TestWriteFile_InvalidPackageKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apollo.json")
	require.NoError(t, WriteFile(path, samplePackage()))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	bad := samplePackage()
	bad.Project.Name = ""
	assert.ErrorIs(t, WriteFile(path, bad), ErrInvalidPackage)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestWriteFile_RepairsFieldsTheStoreAccepts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apollo.yaml")
	pkg := samplePackage()
	pkg.Tasks[0].Status = ""
	pkg.Tasks[0].Progress = 150
	pkg.Tasks[1].Progress = -20
	pkg.Project.Risks[0].Status = ""
	pkg.Project.Risks[0].Probability = 1.4
	pkg.Project.Risks[0].Impact = 7

	require.NoError(t, WriteFile(path, pkg))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskTodo, got.Tasks[0].Status)
	assert.InDelta(t, 100, got.Tasks[0].Progress, 0.001)
	assert.InDelta(t, 0, got.Tasks[1].Progress, 0.001)
	assert.Equal(t, domain.RiskOpen, got.Project.Risks[0].Status)
	assert.InDelta(t, 1, got.Project.Risks[0].Probability, 0.001)
	assert.Equal(t, 5, got.Project.Risks[0].Impact)

	assert.Empty(t, pkg.Tasks[0].Status, "caller's package is left untouched")
	assert.InDelta(t, 150, pkg.Tasks[0].Progress, 0.001)
	assert.InDelta(t, 1.4, pkg.Project.Risks[0].Probability, 0.001)
}

func TestWriteFile_RejectsDuplicateIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apollo.json")
	pkg := samplePackage()
	pkg.Project.Costs = append(pkg.Project.Costs, pkg.Project.Costs[0])

	err := WriteFile(path, pkg)
	assert.ErrorIs(t, err, ErrInvalidPackage)
	assert.Contains(t, err.Error(), "project.costs[1].id: duplicate")
	assert.NoFileExists(t, path)
}

func TestReadFile_Errors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ReadFile("plan.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestUnmarshal_IsLenientButChecksVersion(t *testing.T) {
	pkg := samplePackage()
	pkg.Project.Name = ""
	data, err := Marshal(pkg)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err, "snapshots are restored even when they would not pass file validation")
	assert.Empty(t, got.Project.Name)

	pkg.Manifest.FileVersion = "3.1"
	data, err = Marshal(pkg)
	require.NoError(t, err)
	_, err = Unmarshal(data)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}
