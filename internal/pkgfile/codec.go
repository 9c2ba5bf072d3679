// Package pkgfile reads and writes project packages: the manifest, project
// header and entity collections bundle shared by snapshots and project
// files.
package pkgfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/ganttly/internal/domain"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnsupportedFormat = errors.New("unsupported package file format")

// FormatForPath picks the encoding from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (use .json, .yaml or .yml)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Encode writes pkg to w. JSON output is indented.
func Encode(w io.Writer, pkg *domain.Package, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pkg)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(pkg); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Decode parses a package from r and validates it.
func Decode(r io.Reader, format Format) (*domain.Package, error) {
	var pkg domain.Package
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&pkg); err != nil {
			return nil, fmt.Errorf("%w: parsing json: %v", ErrInvalidPackage, err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&pkg); err != nil {
			return nil, fmt.Errorf("%w: parsing yaml: %v", ErrInvalidPackage, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	Normalize(&pkg)
	if err := Validate(&pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// Marshal encodes pkg as compact JSON, the snapshot payload format.
func Marshal(pkg *domain.Package) ([]byte, error) {
	return json.Marshal(pkg)
}

// Unmarshal decodes a JSON snapshot payload. Snapshots hold whatever the
// store held, so only the file version is checked.
func Unmarshal(data []byte) (*domain.Package, error) {
	var pkg domain.Package
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&pkg); err != nil {
		return nil, fmt.Errorf("%w: parsing snapshot payload: %v", ErrInvalidPackage, err)
	}
	Normalize(&pkg)
	if err := validateVersion(pkg.Manifest.FileVersion); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ReadFile loads and validates the package stored at path.
func ReadFile(path string) (*domain.Package, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pkg, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return pkg, nil
}

// WriteFile writes pkg to path through a temporary file in the same
// directory, so a failed write never truncates an existing package.
// Field defaults and ranges are repaired on a copy so the written file
// passes ReadFile; only manifest and id problems fail the write.
func WriteFile(path string, pkg *domain.Package) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	if pkg == nil {
		return fmt.Errorf("%w: empty package", ErrInvalidPackage)
	}
	pkg = prepareForWrite(pkg)
	if err := validateForWrite(pkg); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, pkg, format); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Normalize fills defaults a hand-written package may omit.
func Normalize(pkg *domain.Package) {
	if pkg.Manifest.FileVersion == "" {
		pkg.Manifest.FileVersion = domain.CurrentFileVersion
	}
	if pkg.Project.ID == "" {
		pkg.Project.ID = pkg.Manifest.ProjectUUID
	}
	for i := range pkg.Tasks {
		if pkg.Tasks[i].Status == "" {
			pkg.Tasks[i].Status = domain.TaskTodo
		}
	}
	for i := range pkg.Project.Risks {
		if pkg.Project.Risks[i].Status == "" {
			pkg.Project.Risks[i].Status = domain.RiskOpen
		}
	}
}

// prepareForWrite returns a normalized copy of pkg with numeric fields
// clamped into the ranges ReadFile accepts. pkg itself is not modified.
func prepareForWrite(pkg *domain.Package) *domain.Package {
	out := *pkg
	out.Tasks = append([]domain.Task(nil), pkg.Tasks...)
	out.Project.Risks = append([]domain.Risk(nil), pkg.Project.Risks...)
	Normalize(&out)

	for i := range out.Tasks {
		out.Tasks[i].Progress = math.Max(0, math.Min(100, out.Tasks[i].Progress))
	}
	for i := range out.Project.Risks {
		r := &out.Project.Risks[i]
		r.Probability = math.Max(0, math.Min(1, r.Probability))
		if r.Impact != 0 {
			r.Impact = min(max(r.Impact, 1), 5)
		}
	}
	return &out
}
