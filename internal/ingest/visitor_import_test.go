package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestFromXLSX(t *testing.T) {
	buf := workbookBytes(t, [][]interface{}{
		{"Name", "Phone", "Email"},
		{"Jane Mwangi", "0712 000 111", "jane@example.com"},
		{"Peter Otieno", "", "peter@example.com"},
		{"", "", ""},
		{"Amina Yusuf"},
	})

	visitors, err := FromXLSX(buf)
	assert.NoError(t, err)
	require.Len(t, visitors, 3)

	assert.Equal(t, "Jane Mwangi", visitors[0].Name)
	assert.Equal(t, "0712 000 111 | jane@example.com", visitors[0].Contact)
	assert.Equal(t, "peter@example.com", visitors[1].Contact)
	assert.Equal(t, "Amina Yusuf", visitors[2].Name)
	assert.Equal(t, "", visitors[2].Contact)
}

func TestFromCSV(t *testing.T) {
	data := strings.Join([]string{
		"name,contact",
		"Jane Mwangi,0712 000 111",
		",0733 222 333",
		"  ,  ",
	}, "\n")

	visitors, err := FromCSV(strings.NewReader(data))
	assert.NoError(t, err)
	require.Len(t, visitors, 2)
	assert.Equal(t, "Jane Mwangi", visitors[0].Name)
	assert.Equal(t, "", visitors[1].Name)
	assert.Equal(t, "0733 222 333", visitors[1].Contact)
}

func TestFromCSV_NoHeader(t *testing.T) {
	visitors, err := FromCSV(strings.NewReader("Jane Mwangi,0712 000 111\n"))
	assert.NoError(t, err)
	require.Len(t, visitors, 1)
	assert.Equal(t, "Jane Mwangi", visitors[0].Name)
}

func TestFromCSV_RowCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("name\n")
	for i := 0; i <= MaxRows; i++ {
		sb.WriteString("Visitor\n")
	}

	_, err := FromCSV(strings.NewReader(sb.String()))
	assert.ErrorIs(t, err, ErrTooManyRows)
}

func TestParseRow_JoinsContactColumns(t *testing.T) {
	v, ok := parseRow([]string{"Jane", "0712", "", "jane@example.com"})
	assert.True(t, ok)
	assert.Equal(t, "0712 | jane@example.com", v.Contact)
}
