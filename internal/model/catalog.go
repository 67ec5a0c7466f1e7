package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RiskCatalogEntry pairs a known risk category with its remediation text
type RiskCatalogEntry struct {
	Category    string `json:"category" yaml:"category" mapstructure:"category"`
	Remediation string `json:"remediation" yaml:"remediation" mapstructure:"remediation"`
}

// Catalog is the ordered, read-only set of risk categories.
// Order matters: it is the tie-break order for remediation matching.
type Catalog []RiskCatalogEntry

// DefaultCatalog returns the built-in risk categories
func DefaultCatalog() Catalog {
	return Catalog{
		{Category: "payment", Remediation: "Specify clear payment terms and criteria for approval to avoid ambiguity."},
		{Category: "liability", Remediation: "Balance liability clauses; include exceptions for gross negligence."},
		{Category: "termination", Remediation: "Clearly define termination conditions to avoid disputes."},
		{Category: "non-compete", Remediation: "Ensure duration and scope are reasonable and enforceable."},
		{Category: "governing law", Remediation: "Choose jurisdiction familiar to both parties or include neutral arbitration."},
		{Category: "confidentiality", Remediation: "Clarify consequences and scope of confidential information."},
	}
}

// Validate checks that the catalog is non-empty, complete and has unique categories
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("catalog is empty")
	}

	seen := make(map[string]int, len(c))
	for i, e := range c {
		key := strings.ToLower(strings.TrimSpace(e.Category))
		if key == "" {
			return fmt.Errorf("catalog entry %d: category is empty", i)
		}
		if strings.TrimSpace(e.Remediation) == "" {
			return fmt.Errorf("catalog entry %d (%s): remediation is empty", i, e.Category)
		}
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("catalog entry %d: duplicate category %q (first defined at entry %d)", i, e.Category, prev)
		}
		seen[key] = i
	}

	return nil
}

// Remediations returns the remediation texts in catalog order
func (c Catalog) Remediations() []string {
	texts := make([]string, len(c))
	for i, e := range c {
		texts[i] = e.Remediation
	}
	return texts
}

// Fingerprint returns a stable content hash of the catalog
func (c Catalog) Fingerprint() string {
	h := sha256.New()
	for _, e := range c {
		// NUL separators keep ("ab","c") and ("a","bc") apart
		h.Write([]byte(e.Category))
		h.Write([]byte{0})
		h.Write([]byte(e.Remediation))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// catalogFile is the on-disk layout of a catalog file
type catalogFile struct {
	Entries Catalog `yaml:"entries"`
}

// LoadCatalog reads a catalog from a YAML file
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	if err := f.Entries.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}

	return f.Entries, nil
}
