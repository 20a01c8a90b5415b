package table

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRows(t *testing.T) {
	t.Parallel()

	tbl := New("r", "mean")
	require.NoError(t, tbl.AppendRow(0.5, 7.5))
	require.NoError(t, tbl.AppendRow(1.0, 7.25))

	assert.Equal(t, []string{"r", "mean"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []float64{0.5, 1.0}, tbl.Column("r"))
	assert.Equal(t, []float64{7.5, 7.25}, tbl.Column("mean"))
	assert.Nil(t, tbl.Column("missing"))

	assert.Error(t, tbl.AppendRow(1.0), "arity mismatch is rejected")
	assert.Equal(t, 2, tbl.Len(), "failed append leaves the table unchanged")
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	tbl := New("a1", "a2", "velocityx")
	require.NoError(t, tbl.AppendRow(0, 1, 7.5))
	require.NoError(t, tbl.AppendRow(-1.5, 2, 1e-7))

	var sb strings.Builder
	require.NoError(t, tbl.WriteCSV(&sb))

	want := "a1,a2,velocityx\n" +
		"0,1,7.5\n" +
		"-1.5,2,1e-07\n"
	assert.Equal(t, want, sb.String())
}

func TestSaveCSV(t *testing.T) {
	t.Parallel()

	tbl := New("r")
	require.NoError(t, tbl.AppendRow(1))

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, tbl.SaveCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "r\n1\n", string(data))
}
