package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonFTWANG/AIKG/internal/types"
)

func writeSeedFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadSeedFile_YAMLList tests loading a YAML record list.
func TestLoadSeedFile_YAMLList(t *testing.T) {
	path := writeSeedFixture(t, "seed.yaml", `
- type: technique
  name: SQL注入
  description: 通过SQL查询注入恶意代码
  category: 注入攻击
  severity: HIGH
  defenses:
    - 输入验证
    - 参数化查询
  tools:
    - SQLMap
- type: lab
  name: DVWA
  free: true
  topics: [SQL注入]
`)

	records, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "technique", records[0].Type)
	assert.Equal(t, "SQL注入", records[0].Name)
	assert.Equal(t, []string{"输入验证", "参数化查询"}, records[0].Defenses)
	assert.Equal(t, []string{"SQLMap"}, records[0].Tools)

	assert.Equal(t, "lab", records[1].Type)
	assert.True(t, records[1].Free)
	assert.Equal(t, []string{"SQL注入"}, records[1].Topics)
}

// TestLoadSeedFile_SingleRecord tests the single-record fallback.
func TestLoadSeedFile_SingleRecord(t *testing.T) {
	path := writeSeedFixture(t, "one.yml", `
type: cve
id: CVE-2021-44228
name: Log4Shell
severity: CRITICAL
cvss_score: 10.0
`)

	records, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CVE-2021-44228", records[0].ID)
	assert.Equal(t, 10.0, records[0].CVSSScore)
}

// TestLoadSeedFile_JSON tests loading a JSON record list.
func TestLoadSeedFile_JSON(t *testing.T) {
	path := writeSeedFixture(t, "seed.json",
		`[{"type":"cve","id":"CVE-2014-0160","name":"Heartbleed","cvss_score":7.5}]`)

	records, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Heartbleed", records[0].Name)
	assert.Equal(t, 7.5, records[0].CVSSScore)
}

// TestLoadSeedFile_Missing tests the error code for an absent file.
func TestLoadSeedFile_Missing(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.SEED_PARSE_FAILED))
}

// TestLoadSeedFile_Malformed tests the error code for undecodable content.
func TestLoadSeedFile_Malformed(t *testing.T) {
	path := writeSeedFixture(t, "bad.yaml", `"not a seed file"`)

	_, err := LoadSeedFile(path)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.SEED_PARSE_FAILED))
}
