package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pairRow struct {
	Key   string `csv:"Key"`
	Value string `csv:"Value"`
}

func TestReadCSV(t *testing.T) {
	data := append([]byte{}, UTF8BOM...)
	data = append(data, []byte("Key;Value;Extra\nA;1;x\nB;\"2;3\"\n")...)

	rows, err := ReadCSV[pairRow](data, ';', nil)
	require.NoError(t, err)
	assert.Equal(t, []pairRow{{Key: "A", Value: "1"}, {Key: "B", Value: "2;3"}}, rows)
}

func TestReadCSV_Empty(t *testing.T) {
	rows, err := ReadCSV[pairRow](nil, ',', nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = ReadCSV[pairRow]([]byte("Key,Value\n"), ',', nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadCSV_HeaderPatch(t *testing.T) {
	patch := func(header []string) {
		if len(header) > 0 && header[0] == "" {
			header[0] = "Key"
		}
	}
	rows, err := ReadCSV[pairRow]([]byte(",Value\nA,1\n"), ',', patch)
	require.NoError(t, err)
	assert.Equal(t, []pairRow{{Key: "A", Value: "1"}}, rows)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []pairRow{{Key: "A", Value: "x,y"}}, ',', true))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), UTF8BOM))
	assert.Equal(t, "Key,Value\nA,\"x,y\"\n", string(bytes.TrimPrefix(buf.Bytes(), UTF8BOM)))

	rows, err := ReadCSV[pairRow](buf.Bytes(), ',', nil)
	require.NoError(t, err)
	assert.Equal(t, []pairRow{{Key: "A", Value: "x,y"}}, rows)
}

func TestWriteCSV_NoRowsWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV[pairRow](&buf, nil, ';', false))
	assert.Equal(t, "Key;Value\n", buf.String())
}
