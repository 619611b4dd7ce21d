package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/LeonFTWANG/AIKG/internal/types"
)

// SeedRecord is one entry of a seed knowledge file. Type selects the target
// label; the remaining fields cover the union of what each label stores.
type SeedRecord struct {
	Type        string   `json:"type" yaml:"type"`
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Severity    string   `json:"severity,omitempty" yaml:"severity,omitempty"`
	CVSSScore   float64  `json:"cvss_score,omitempty" yaml:"cvss_score,omitempty"`
	Published   string   `json:"published,omitempty" yaml:"published,omitempty"`
	URL         string   `json:"url,omitempty" yaml:"url,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	MitreID     string   `json:"mitre_id,omitempty" yaml:"mitre_id,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Topics      []string `json:"topics,omitempty" yaml:"topics,omitempty"`
	Free        bool     `json:"free,omitempty" yaml:"free,omitempty"`
	Defenses    []string `json:"defenses,omitempty" yaml:"defenses,omitempty"`
	Tools       []string `json:"tools,omitempty" yaml:"tools,omitempty"`
}

// LoadSeedFile reads seed records from path. YAML is assumed unless the file
// ends in .json. The file may hold either a list of records or a single
// record.
func LoadSeedFile(path string) ([]SeedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.SEED_PARSE_FAILED,
			fmt.Sprintf("read seed file %s", path), err)
	}

	if strings.HasSuffix(path, ".json") {
		return parseSeedJSON(data)
	}
	return parseSeedYAML(data)
}

func parseSeedYAML(data []byte) ([]SeedRecord, error) {
	var records []SeedRecord
	if err := yaml.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var single SeedRecord
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, types.WrapError(types.SEED_PARSE_FAILED,
			"seed data is not a record or record list", err)
	}
	return []SeedRecord{single}, nil
}

func parseSeedJSON(data []byte) ([]SeedRecord, error) {
	var records []SeedRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var single SeedRecord
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, types.WrapError(types.SEED_PARSE_FAILED,
			"seed data is not a record or record list", err)
	}
	return []SeedRecord{single}, nil
}
