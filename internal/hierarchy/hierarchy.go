package hierarchy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/types"
)

// Matrix declares, per child entity type, which parent entity types may
// contain it. Containment rules are deliberately configuration, not code:
// kinds absent from the matrix accept any parent.
type Matrix struct {
	allowed map[string][]string
}

type matrixFile struct {
	Containment map[string][]string `yaml:"containment"`
}

const defaultMatrixYAML = `
containment:
  ROOM: [BUILDING]
  BUILDING: [CAMPUS]
  DEPARTMENT: [FACULTY]
`

// Default returns the built-in containment matrix.
func Default() *Matrix {
	m, err := Parse([]byte(defaultMatrixYAML))
	if err != nil {
		panic(fmt.Sprintf("built-in hierarchy matrix invalid: %v", err))
	}
	return m
}

// Load reads a matrix from the YAML file at path; an empty path yields the
// built-in default.
func Load(path string) (*Matrix, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hierarchy config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML containment document, validating every named kind.
func Parse(raw []byte) (*Matrix, error) {
	var f matrixFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse hierarchy config: %w", err)
	}
	allowed := make(map[string][]string, len(f.Containment))
	for child, parents := range f.Containment {
		child = strings.ToUpper(strings.TrimSpace(child))
		if !types.ValidEntityType(child) {
			return nil, apperrors.Validation("hierarchy config: unknown entity type %q", child)
		}
		ups := make([]string, 0, len(parents))
		for _, p := range parents {
			p = strings.ToUpper(strings.TrimSpace(p))
			if !types.ValidEntityType(p) {
				return nil, apperrors.Validation("hierarchy config: unknown parent type %q for %q", p, child)
			}
			ups = append(ups, p)
		}
		allowed[child] = ups
	}
	return &Matrix{allowed: allowed}, nil
}

// Allows reports whether an entity of childType may have a parent of
// parentType. Unconfigured child types are unconstrained.
func (m *Matrix) Allows(childType, parentType string) bool {
	parents, ok := m.allowed[childType]
	if !ok {
		return true
	}
	for _, p := range parents {
		if p == parentType {
			return true
		}
	}
	return false
}

// AllowedParents returns the configured parent types for childType, nil when
// unconstrained.
func (m *Matrix) AllowedParents(childType string) []string {
	return m.allowed[childType]
}
