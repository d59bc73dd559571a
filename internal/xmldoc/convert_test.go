package xmldoc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtoporowski/stovokor/internal/config"
	"github.com/mtoporowski/stovokor/internal/engine"
)

func pathRule(selector, expr string) config.PathRule {
	return config.PathRule{
		Selector: selector,
		Rule:     config.Rule{Expr: expr},
	}
}

func newTestEngine(t *testing.T, cfg *config.Config) *engine.Engine {
	t.Helper()
	eng, err := engine.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

// TestConvertFileGolden runs only deterministic rules (const expressions and
// a pass-through) so the output can be compared against a golden file.
func TestConvertFileGolden(t *testing.T) {
	cfg := &config.Config{
		Paths: []config.PathRule{
			pathRule("//Nm", "const CUSTOMER"),
			pathRule("//DbtrAcct/Id", "const FI1047250961000573"),
			pathRule("//Ref", "const #len"),
			pathRule("//Bad", "iban_regenerate #text"),
			// Already claimed by the first selector; must not fire.
			pathRule("//Nm", "const OVERRIDDEN"),
		},
		Comments: true,
	}
	eng := newTestEngine(t, cfg)

	out := filepath.Join(t.TempDir(), "payment.out.xml")
	err := ConvertFile(context.Background(), filepath.Join("testdata", "payment.xml"), out, cfg, eng)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "payment", got)
}

func TestConvertFileMultipleXMLs(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "batch.xml")
	content := `<?xml version="1.0"?>
<Doc><Nm>first</Nm></Doc>
<?xml version="1.0"?>
<Doc><Nm>second</Nm></Doc>
`
	require.NoError(t, os.WriteFile(in, []byte(content), 0o644))

	cfg := &config.Config{
		Paths:              []config.PathRule{pathRule("//Nm", "const X")},
		MultipleXMLsInFile: true,
	}
	eng := newTestEngine(t, cfg)

	out := filepath.Join(dir, "batch.out.xml")
	require.NoError(t, ConvertFile(context.Background(), in, out, cfg, eng))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(got), `<?xml version="1.0"?>`))
	assert.Equal(t, 2, strings.Count(string(got), "<Nm>X</Nm>"))
	assert.NotContains(t, string(got), "first")
	assert.NotContains(t, string(got), "second")
}

func TestConvertPathDirectory(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input")
	require.NoError(t, os.Mkdir(in, 0o755))
	doc := `<?xml version="1.0"?><Doc><Nm>secret</Nm></Doc>`
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.xml"), []byte(doc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "b.xml"), []byte(doc), 0o644))
	// Output of an earlier run must not be picked up again.
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.out.xml"), []byte(doc), 0o644))

	cfg := &config.Config{Paths: []config.PathRule{pathRule("//Nm", "const X")}}
	eng := newTestEngine(t, cfg)

	out := filepath.Join(dir, "converted")
	require.NoError(t, ConvertPath(context.Background(), in, out, cfg, eng))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"a.xml", "b.xml"}, names)

	got, err := os.ReadFile(filepath.Join(out, "a.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(got), "<Nm>X</Nm>")
}

func TestConvertPathDirectoryDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input")
	require.NoError(t, os.Mkdir(in, 0o755))
	doc := `<?xml version="1.0"?><Doc><Nm>secret</Nm></Doc>`
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.xml"), []byte(doc), 0o644))

	cfg := &config.Config{Paths: []config.PathRule{pathRule("//Nm", "const X")}}
	eng := newTestEngine(t, cfg)

	require.NoError(t, ConvertPath(context.Background(), in, "", cfg, eng))
	_, err := os.Stat(filepath.Join(dir, "input.out", "a.xml"))
	assert.NoError(t, err)
}

func TestConvertPathDefaultOutputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "doc.xml")
	require.NoError(t, os.WriteFile(in, []byte(`<?xml version="1.0"?><Doc><Nm>secret</Nm></Doc>`), 0o644))

	cfg := &config.Config{Paths: []config.PathRule{pathRule("//Nm", "const X")}}
	eng := newTestEngine(t, cfg)

	require.NoError(t, ConvertPath(context.Background(), in, "", cfg, eng))
	got, err := os.ReadFile(in + ".out.xml")
	require.NoError(t, err)
	assert.Contains(t, string(got), "<Nm>X</Nm>")
}

func TestConvertPathErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "doc.xml")
	require.NoError(t, os.WriteFile(in, []byte(`<?xml version="1.0"?><Doc/>`), 0o644))

	cfg := &config.Config{}
	eng := newTestEngine(t, cfg)
	ctx := context.Background()

	t.Run("missing input", func(t *testing.T) {
		err := ConvertPath(ctx, filepath.Join(dir, "nope.xml"), "", cfg, eng)
		assert.ErrorContains(t, err, "does not exist")
	})

	t.Run("output equals input", func(t *testing.T) {
		err := ConvertPath(ctx, in, in, cfg, eng)
		assert.ErrorContains(t, err, "output cannot be equal to input")
	})

	t.Run("output is a directory", func(t *testing.T) {
		err := ConvertPath(ctx, in, dir, cfg, eng)
		assert.ErrorContains(t, err, "existing directory")
	})
}

func TestValidateSelectors(t *testing.T) {
	ok := &config.Config{Paths: []config.PathRule{
		pathRule("//Nm", "const X"),
		pathRule("//DbtrAcct/Id", "const X"),
	}}
	assert.NoError(t, ValidateSelectors(ok))

	bad := &config.Config{Paths: []config.PathRule{pathRule("//Nm[", "const X")}}
	err := ValidateSelectors(bad)
	require.Error(t, err)
	var cerr *config.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, config.ErrCodeBadSelector, cerr.Code)
}

func TestSplitXMLs(t *testing.T) {
	t.Run("single document", func(t *testing.T) {
		in := []byte(`<?xml version="1.0"?><Doc/>`)
		chunks := SplitXMLs(in)
		require.Len(t, chunks, 1)
		assert.Equal(t, in, chunks[0])
	})

	t.Run("two documents", func(t *testing.T) {
		chunks := SplitXMLs([]byte("<?xml version=\"1.0\"?><A/>\n<?xml version=\"1.0\"?><B/>"))
		require.Len(t, chunks, 2)
		assert.Equal(t, "<?xml version=\"1.0\"?><A/>\n", string(chunks[0]))
		assert.Equal(t, `<?xml version="1.0"?><B/>`, string(chunks[1]))
	})

	t.Run("leading content without declaration", func(t *testing.T) {
		chunks := SplitXMLs([]byte(`junk<?xml version="1.0"?><A/>`))
		require.Len(t, chunks, 2)
		assert.Equal(t, "junk", string(chunks[0]))
	})

	t.Run("empty input", func(t *testing.T) {
		chunks := SplitXMLs(nil)
		require.Len(t, chunks, 1)
		assert.Empty(t, chunks[0])
	})
}
