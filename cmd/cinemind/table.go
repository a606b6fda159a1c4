package main

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"cinemind/internal/api"
	"cinemind/internal/metadata"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, columns)
	for i := range configs {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderMovies lays out ranked movies. Score and detail columns appear only
// when at least one row carries them.
func renderMovies(movies []api.Movie) string {
	withScore, withDetails := false, false
	for _, m := range movies {
		withScore = withScore || m.Score != nil
		withDetails = withDetails || m.Details != nil
	}

	headers := []string{"#", "Title", "Genres", "Rating", "Votes"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight}
	if withScore {
		headers = append(headers, "Score")
		aligns = append(aligns, alignRight)
	}
	if withDetails {
		headers = append(headers, "Director", "Runtime", "IMDb")
		aligns = append(aligns, alignLeft, alignLeft, alignRight)
	}

	rows := make([][]string, 0, len(movies))
	for i, m := range movies {
		rank := m.Rank
		if rank == 0 {
			rank = i + 1
		}
		row := []string{
			strconv.Itoa(rank),
			m.Title,
			strings.Join(m.Genres, ", "),
			strconv.FormatFloat(m.VoteAverage, 'f', 1, 64),
			strconv.FormatInt(m.VoteCount, 10),
		}
		if withScore {
			row = append(row, formatScore(m.Score))
		}
		if withDetails {
			d := metadata.Fallback()
			if m.Details != nil {
				d = *m.Details
			}
			row = append(row, d.Director, d.Runtime, d.Rating)
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, aligns)
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return strconv.FormatFloat(*score, 'f', 3, 64)
}
