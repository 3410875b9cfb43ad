package balancer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPolicy_PartialOverrideKeepsDefaults(t *testing.T) {
	path := writePolicyFile(t, "ratio: 0.5\nfree_chunk_multiplier: 3.0\n")

	p, err := LoadPolicy(path)

	require.NoError(t, err)
	assert.Equal(t, 0.5, p.Ratio)
	assert.Equal(t, 3.0, p.FreeChunkMultiplier)
	// untouched keys keep stock values
	assert.Equal(t, 30, p.Window)
	assert.Equal(t, 0.25, p.ShareThreshold)
	assert.Equal(t, 2.0, p.PersistenceDivisor)
	assert.Equal(t, int64(2), p.MinSourcePages)
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadPolicy_MalformedYAML(t *testing.T) {
	path := writePolicyFile(t, "ratio: [0.5\n")
	_, err := LoadPolicy(path)
	assert.Error(t, err)
}

func TestLoadPolicy_RejectsInvalidValues(t *testing.T) {
	path := writePolicyFile(t, "window: 0\n")
	_, err := LoadPolicy(path)
	assert.Error(t, err)
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	cases := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"zero window", func(p *Policy) { p.Window = 0 }},
		{"negative ratio", func(p *Policy) { p.Ratio = -1 }},
		{"zero free multiplier", func(p *Policy) { p.FreeChunkMultiplier = 0 }},
		{"zero share threshold", func(p *Policy) { p.ShareThreshold = 0 }},
		{"zero persistence divisor", func(p *Policy) { p.PersistenceDivisor = 0 }},
		{"negative min source pages", func(p *Policy) { p.MinSourcePages = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultPolicy()
			tc.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}
