package scoreservice

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	scoredb "github.com/demonlist-club/demonlist-backend/app/modules/score/infrastructure/repositories"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/xuri/excelize/v2"
)

// exportPageSize bounds how many rows one repository fetch pulls while
// streaming a full ranking into an export.
const exportPageSize = 500

// ExportPlayerRankingXLSX renders the full player ranking of one pool as an
// XLSX workbook.
func (s *ScoreService) ExportPlayerRankingXLSX(ctx context.Context, pool scoredb.Pool) ([]byte, error) {
	return withTelemetry(s, ctx, "ExportPlayerRankingXLSX", func(ctx context.Context) ([]byte, error) {
		f := excelize.NewFile()
		defer f.Close()

		sheet := f.GetSheetName(0)
		headers := []string{"Rank", "Player ID", "Score"}
		for col, h := range headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return nil, err
			}
		}

		row := 2
		for offset := 0; ; offset += exportPageSize {
			page, err := s.repo.RankedPlayers(ctx, pool, exportPageSize, offset)
			if err != nil {
				return nil, err
			}
			if len(page) == 0 {
				break
			}
			for _, r := range page {
				if err := f.SetCellValue(sheet, "A"+strconv.Itoa(row), r.Rank); err != nil {
					return nil, err
				}
				if err := f.SetCellValue(sheet, "B"+strconv.Itoa(row), r.PlayerID); err != nil {
					return nil, err
				}
				if err := f.SetCellValue(sheet, "C"+strconv.Itoa(row), r.Score); err != nil {
					return nil, err
				}
				row++
			}
			if len(page) < exportPageSize {
				break
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize workbook: %w", err)
		}
		return buf.Bytes(), nil
	})
}

// NationRankingChart renders the top nations of one pool as a PNG bar chart.
func (s *ScoreService) NationRankingChart(ctx context.Context, pool scoredb.Pool, topN int) ([]byte, error) {
	return withTelemetry(s, ctx, "NationRankingChart", func(ctx context.Context) ([]byte, error) {
		if topN <= 0 {
			topN = 10
		}
		ranks, err := s.repo.RankedNations(ctx, pool, topN, 0)
		if err != nil {
			return nil, err
		}
		if len(ranks) == 0 {
			return renderEmptyRankingPlaceholder()
		}

		bars := make([]chart.Value, len(ranks))
		for i, r := range ranks {
			bars[i] = chart.Value{Label: r.NationalityID, Value: r.Score}
		}

		graph := chart.BarChart{
			Title:    "Nation ranking",
			Width:    800,
			Height:   400,
			BarWidth: 40,
			Bars:     bars,
		}

		buffer := bytes.NewBuffer([]byte{})
		if err := graph.Render(chart.PNG, buffer); err != nil {
			return nil, err
		}
		return buffer.Bytes(), nil
	})
}

func renderEmptyRankingPlaceholder() ([]byte, error) {
	const msg = "No ranked nations"

	graph := chart.Chart{
		Width:  400,
		Height: 200,
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
