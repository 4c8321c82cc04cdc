package ui

import (
	"fmt"
	"strconv"

	"github.com/desertthunder/playrelay/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// HistoryTable renders plays as a rounded table, newest first as given.
func HistoryTable(plays []models.Play) string {
	t := table.NewWriter()

	t.AppendHeader(table.Row{"#", "Time", "Track", "Outcome", "Status", "Attempts", "Refreshed"})
	for i, play := range plays {
		status := "-"
		if play.Status != 0 {
			status = strconv.Itoa(play.Status)
		}
		refreshed := ""
		if play.Refreshed {
			refreshed = "yes"
		}

		t.AppendRow(table.Row{
			i + 1,
			play.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			play.TrackURI,
			Outcome(play.Outcome, play.Succeeded()),
			status,
			play.Attempts,
			refreshed,
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.SetCaption(fmt.Sprintf("%d plays", len(plays)))

	return t.Render()
}
