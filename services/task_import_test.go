package services

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Expediente", "Título", "Fecha", "Urgente"}))
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParseTaskWorkbook(t *testing.T) {
	t.Run("ValidRows", func(t *testing.T) {
		buf := buildWorkbook(t, [][]interface{}{
			{"123/2026", "Contestar demanda", "2026-09-01", "Sí"},
			{"", "Llamar al cliente", "2026-09-02", "no"},
			{"456/2026", "Presentar pruebas", "2026-09-03", ""},
		})

		tasks, importErrs, err := ParseTaskWorkbook(buf)
		require.NoError(t, err)
		assert.Empty(t, importErrs.Rows)
		require.Len(t, tasks, 3)

		assert.Equal(t, "123/2026", tasks[0].Expediente)
		assert.Equal(t, "Contestar demanda", tasks[0].Title)
		assert.True(t, tasks[0].Urgent)
		assert.Empty(t, tasks[1].Expediente)
		assert.False(t, tasks[1].Urgent)
		assert.False(t, tasks[2].Urgent)
	})

	t.Run("RowErrorsCollectedWithoutAborting", func(t *testing.T) {
		buf := buildWorkbook(t, [][]interface{}{
			{"123/2026", "", "2026-09-01", "no"},
			{"456/2026", "Sin fecha", "", "no"},
			{"789/2026", "Correcta", "2026-09-05", "si"},
		})

		tasks, importErrs, err := ParseTaskWorkbook(buf)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Correcta", tasks[0].Title)

		require.Len(t, importErrs.Rows, 2)
		assert.Contains(t, importErrs.Rows[0], "fila 2")
		assert.Contains(t, importErrs.Rows[1], "fila 3")
	})

	t.Run("EmptyRowsSkipped", func(t *testing.T) {
		buf := buildWorkbook(t, [][]interface{}{
			{"", "", "", ""},
			{"123/2026", "Tarea", "2026-09-01", "no"},
		})

		tasks, importErrs, err := ParseTaskWorkbook(buf)
		require.NoError(t, err)
		assert.Empty(t, importErrs.Rows)
		assert.Len(t, tasks, 1)
	})

	t.Run("NotAWorkbook", func(t *testing.T) {
		_, _, err := ParseTaskWorkbook(bytes.NewReader([]byte("esto no es xlsx")))
		assert.Error(t, err)
	})
}

func TestParseUrgent(t *testing.T) {
	for _, val := range []string{"si", "Sí", "URGENTE", "true", "1", "yes"} {
		assert.True(t, parseUrgent(val), "%q should be urgent", val)
	}
	for _, val := range []string{"", "no", "false", "0", "tal vez"} {
		assert.False(t, parseUrgent(val), "%q should not be urgent", val)
	}
}
