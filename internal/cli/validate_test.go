package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeValidate(t *testing.T, conf string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"-c", conf})
	err := cmd.Execute()
	return buf.String(), err
}

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateValidConfiguration(t *testing.T) {
	conf := writeConf(t, testConf)

	out, err := executeValidate(t, conf)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ configuration valid")
	assert.Contains(t, out, "1 predefined rule(s), 2 path rule(s)")
}

func TestValidateUnknownGenerator(t *testing.T) {
	conf := writeConf(t, "xpaths:\n  //Nm: frobnicate\n")

	_, err := executeValidate(t, conf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONF_UNKNOWN_GENERATOR")
}

func TestValidateBadSelector(t *testing.T) {
	conf := writeConf(t, "xpaths:\n  '//Nm[': const X\n")

	_, err := executeValidate(t, conf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONF_BAD_SELECTOR")
}
