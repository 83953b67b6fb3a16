package service

import (
	"bytes"
	"encoding/csv"
	"testing"

	"ai-musictriage-be/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	svc := NewExportService()
	rows := []*dto.ExportRow{
		{TrackId: "a", TrackName: "Alpha, Remix", Artist: "Band A", Themes: []string{"ambiance", "lets_dance"}},
		{TrackId: "b", TrackName: "Beta", Artist: "Band B", Skipped: true},
	}

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"track_id", "track_name", "artist", "themes", "skipped"}, records[0])
	assert.Equal(t, []string{"a", "Alpha, Remix", "Band A", "ambiance|lets_dance", "false"}, records[1])
	assert.Equal(t, []string{"b", "Beta", "Band B", "", "true"}, records[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExportService().WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1, "header only")
}
