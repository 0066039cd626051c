package services

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/propledger/ledgercore/internal/core/domain"
)

//go:embed default_mappings.yaml
var defaultMappingsYAML []byte

// ConceptCodes is a receivable/income account code pair.
type ConceptCodes struct {
	Receivable string `yaml:"receivable"`
	Income     string `yaml:"income"`
}

type defaultMappingsFile struct {
	Concepts map[domain.ConceptType]ConceptCodes `yaml:"concepts"`
}

// DefaultMappings is the static concept type to account code table. It is immutable once loaded.
type DefaultMappings struct {
	concepts map[domain.ConceptType]ConceptCodes
}

// ParseDefaultMappings parses and validates a YAML mapping table.
func ParseDefaultMappings(data []byte) (*DefaultMappings, error) {
	var file defaultMappingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse default mappings: %w", err)
	}
	for conceptType, codes := range file.Concepts {
		if !conceptType.Known() {
			return nil, fmt.Errorf("default mappings: unknown concept type %q", conceptType)
		}
		if codes.Receivable == "" || codes.Income == "" {
			return nil, fmt.Errorf("default mappings: concept type %q needs both receivable and income codes", conceptType)
		}
	}
	if _, ok := file.Concepts[domain.ConceptUnassigned]; !ok {
		return nil, fmt.Errorf("default mappings: %q entry is required", domain.ConceptUnassigned)
	}
	return &DefaultMappings{concepts: file.Concepts}, nil
}

// LoadDefaultMappings returns the embedded table, or the table at overridePath when it is set.
func LoadDefaultMappings(overridePath string) (*DefaultMappings, error) {
	if overridePath == "" {
		return ParseDefaultMappings(defaultMappingsYAML)
	}
	data, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read default mappings file %s: %w", overridePath, err)
	}
	return ParseDefaultMappings(data)
}

// MustDefaultMappings returns the embedded table and panics if it is invalid.
func MustDefaultMappings() *DefaultMappings {
	m, err := ParseDefaultMappings(defaultMappingsYAML)
	if err != nil {
		panic(err)
	}
	return m
}

// ForConcept returns the codes for conceptType.
func (d *DefaultMappings) ForConcept(conceptType domain.ConceptType) (ConceptCodes, bool) {
	codes, ok := d.concepts[conceptType]
	return codes, ok
}
