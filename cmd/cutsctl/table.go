package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"olga-cuts/internal/models"
)

func renderVideos(videos []models.VideoSummary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Hash", "Title"})
	for _, v := range videos {
		tw.AppendRow(table.Row{strconv.Itoa(v.ID), v.Hash, v.Title})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
