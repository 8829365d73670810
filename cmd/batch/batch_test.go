package batch

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/internal/config"
	"fjacquet/budget-csv/internal/container"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTestContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := config.Defaults()
	cfg.Data.Directory = t.TempDir()
	c, err := container.NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	original := root.AppContainer
	root.AppContainer = c
	t.Cleanup(func() { root.AppContainer = original })
	return c
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reportDir = ""
	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetErr(&out)
	Cmd.SetArgs(args)
	err := Cmd.Execute()
	return out.String(), err
}

func TestBatchCommand_Metadata(t *testing.T) {
	assert.Equal(t, "batch <directory>", Cmd.Use)
	assert.Contains(t, Cmd.Long, "Example")
	assert.NotNil(t, Cmd.RunE)
}

func TestBatchCommand_ImportsDirectory(t *testing.T) {
	c := useTestContainer(t)
	in := t.TempDir()
	reports := filepath.Join(t.TempDir(), "reports")

	require.NoError(t, os.WriteFile(filepath.Join(in, "01-jan.csv"),
		[]byte("Date;Libellé;Montant\n05/01/2024;LOYER;-800\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "02-broken.csv"),
		[]byte("just some text\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "03-feb.csv"),
		[]byte("Date;Libellé;Montant\n05/02/2024;LOYER;-800\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("ignored"), 0o600))

	out, err := run(t, in, "--account", "Main", "--format", "text", "--report-dir", reports)
	require.NoError(t, err)
	assert.Contains(t, out, "FAILED 02-broken.csv")
	assert.Contains(t, out, "2 files imported, 1 failed into Main")
	assert.Contains(t, out, "period 2024-01-05 to 2024-02-05")

	txs, err := c.GetService().Ledger(models.TransactionFilter{Account: "Main"})
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	data, err := os.ReadFile(filepath.Join(reports, "Main_2024-01-05_2024-02-05.json"))
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(2), decoded["inserted"])
}

func TestBatchCommand_AllFilesFail(t *testing.T) {
	useTestContainer(t)
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "bad.csv"), []byte("nothing here\n"), 0o600))

	_, err := run(t, in, "--account", "Main", "--format", "text")
	assert.EqualError(t, err, "none of the 1 files could be imported")
}

func TestBatchCommand_EmptyDirectory(t *testing.T) {
	useTestContainer(t)
	in := t.TempDir()

	out, err := run(t, in, "--account", "Main", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "No CSV files found")
}

func TestBatchCommand_MissingDirectory(t *testing.T) {
	useTestContainer(t)
	_, err := run(t, filepath.Join(t.TempDir(), "missing"), "--account", "Main", "--format", "text")
	assert.Error(t, err)
}
