package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchemaFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		err := os.WriteFile(filepath.Join(dir, name), []byte(`<schema/>`), 0o644)
		require.NoError(t, err)
	}
	return dir
}

func TestScanMatchesVendorNames(t *testing.T) {
	dir := writeSchemaFiles(t,
		"eppm_24_12_schema.xml",
		"ppm_23_12_schema.xml",
		"EPPM_18_08_SCHEMA.XML", // case-insensitive
		"eppm_2412_schema.xml",  // missing separator
		"eppm_24_12_schema.xml.bak",
		"my_eppm_24_12_schema.xml", // prefixed
		"notes.txt",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "ppm_22_12_schema.xml"), 0o755))

	r, err := Scan(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"eppm:18.08", "eppm:24.12", "ppm:23.12"}, r.Keys())
}

func TestScanMissingDirectory(t *testing.T) {
	r, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestGet(t *testing.T) {
	dir := writeSchemaFiles(t, "eppm_24_12_schema.xml", "ppm_23_12_schema.xml")
	r, err := Scan(dir)
	require.NoError(t, err)

	tests := []struct {
		name      string
		specifier string
		wantKey   string
	}{
		{"exact key", "eppm:24.12", "eppm:24.12"},
		{"uppercase key", "EPPM:24.12", "eppm:24.12"},
		{"mixed case", "Ppm:23.12", "ppm:23.12"},
		{"surrounding whitespace", "  eppm:24.12 ", "eppm:24.12"},
		{"bare version implies eppm", "24.12", "eppm:24.12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := r.Get(tt.specifier)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, e.Key)
		})
	}
}

func TestGetUnknown(t *testing.T) {
	dir := writeSchemaFiles(t, "eppm_24_12_schema.xml", "ppm_23_12_schema.xml")
	r, err := Scan(dir)
	require.NoError(t, err)

	_, err = r.Get("eppm:99.99")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "eppm:99.99", nf.Specifier)
	assert.Equal(t, []string{"eppm:24.12", "ppm:23.12"}, nf.Known)
	assert.Contains(t, nf.Error(), "eppm:24.12")
}

func TestLatestComparesNumerically(t *testing.T) {
	dir := writeSchemaFiles(t,
		"eppm_08_03_schema.xml",
		"eppm_21_12_schema.xml",
		"eppm_24_06_schema.xml",
		"eppm_24_12_schema.xml",
		"ppm_23_12_schema.xml",
	)
	r, err := Scan(dir)
	require.NoError(t, err)

	latest := r.Latest("eppm")
	require.NotNil(t, latest)
	assert.Equal(t, "24.12", latest.Version)

	assert.Nil(t, r.Latest("unified"))
}

func TestVersionLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"9.9", "10.1", true}, // numeric, not lexicographic
		{"10.1", "9.9", false},
		{"24.06", "24.12", true},
		{"24.12", "24.12", false},
		{"23.12", "24.06", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, versionLess(tt.a, tt.b), "versionLess(%q, %q)", tt.a, tt.b)
	}
}

func TestResolve(t *testing.T) {
	dir := writeSchemaFiles(t, "eppm_24_12_schema.xml", "eppm_23_12_schema.xml", "ppm_23_12_schema.xml")
	r, err := Scan(dir)
	require.NoError(t, err)

	t.Run("empty specifier picks latest eppm", func(t *testing.T) {
		path, err := r.Resolve("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "eppm_24_12_schema.xml"), path)
	})

	t.Run("registry key", func(t *testing.T) {
		path, err := r.Resolve("ppm:23.12")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "ppm_23_12_schema.xml"), path)
	})

	t.Run("bare version", func(t *testing.T) {
		path, err := r.Resolve("23.12")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "eppm_23_12_schema.xml"), path)
	})

	t.Run("existing file path bypasses the registry", func(t *testing.T) {
		path := filepath.Join(dir, "eppm_24_12_schema.xml")
		got, err := r.Resolve(path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("missing file path", func(t *testing.T) {
		_, err := r.Resolve(filepath.Join(dir, "missing.xml"))
		var fnf *FileNotFoundError
		require.ErrorAs(t, err, &fnf)
	})

	t.Run("xml suffix alone is a path", func(t *testing.T) {
		_, err := r.Resolve("somewhere.xml")
		var fnf *FileNotFoundError
		require.ErrorAs(t, err, &fnf)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := r.Resolve("eppm:99.99")
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
	})
}

func TestResolveNoDefault(t *testing.T) {
	dir := writeSchemaFiles(t, "ppm_23_12_schema.xml")
	r, err := Scan(dir)
	require.NoError(t, err)

	_, err = r.Resolve("")
	var nd *NoDefaultError
	require.ErrorAs(t, err, &nd)
	assert.Equal(t, dir, nd.Dir)
	assert.Contains(t, nd.Error(), dir)
}

func TestAllAndByAppOrdering(t *testing.T) {
	dir := writeSchemaFiles(t,
		"ppm_23_12_schema.xml",
		"eppm_24_12_schema.xml",
		"eppm_08_03_schema.xml",
		"ppm_24_06_schema.xml",
	)
	r, err := Scan(dir)
	require.NoError(t, err)

	var keys []string
	for _, e := range r.All() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"eppm:08.03", "eppm:24.12", "ppm:23.12", "ppm:24.06"}, keys)

	byApp := r.ByApp("ppm")
	require.Len(t, byApp, 2)
	assert.Equal(t, "23.12", byApp[0].Version)
	assert.Equal(t, "24.06", byApp[1].Version)
}

func TestDisplayName(t *testing.T) {
	e := &Entry{Application: "eppm", Version: "24.12"}
	assert.Equal(t, "EPPM 24.12", e.DisplayName())
}

func TestDefaultDirEnvOverride(t *testing.T) {
	t.Setenv("P6SCHEMA_DIR", "/opt/p6/schemas")
	assert.Equal(t, "/opt/p6/schemas", DefaultDir())
}

func TestErrorsAreDistinct(t *testing.T) {
	var err error = &FileNotFoundError{Path: "x"}
	var nf *NotFoundError
	assert.False(t, errors.As(err, &nf))
}
