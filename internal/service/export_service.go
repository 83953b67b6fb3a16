package service

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"ai-musictriage-be/internal/dto"
)

type IExportService interface {
	// WriteCSV renders export rows with a header line. Multi-theme
	// decisions join their keys with "|" inside one cell.
	WriteCSV(w io.Writer, rows []*dto.ExportRow) error
}

type exportService struct{}

func NewExportService() IExportService {
	return &exportService{}
}

func (s *exportService) WriteCSV(w io.Writer, rows []*dto.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"track_id", "track_name", "artist", "themes", "skipped"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.TrackId,
			row.TrackName,
			row.Artist,
			strings.Join(row.Themes, "|"),
			strconv.FormatBool(row.Skipped),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
