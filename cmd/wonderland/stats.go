package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/service"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/stats"
)

func newStatsCommand(a *app) *cobra.Command {
	var (
		year  int
		month int
		lang  string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the monthly dashboard of a year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, err := openDevice(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			defer dev.Close()

			if year == 0 {
				year = time.Now().Year()
			}
			months, err := dev.reports.Monthly(year)
			if err != nil {
				return err
			}
			summary, err := dev.reports.Summary(year, month)
			if err != nil {
				return err
			}
			l := domain.ParseLanguage(lang)
			out := cmd.OutOrStdout()
			renderMonthly(out, months)
			renderSummary(out, summary, l)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default: current year)")
	cmd.Flags().IntVar(&month, "month", stats.AllMonths, "month for the summary, 0 for the whole year")
	cmd.Flags().StringVar(&lang, "lang", string(domain.Japanese), "label language: ja or en")
	return cmd
}

func renderMonthly(w io.Writer, months [12]stats.MonthGrowth) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Month", "Revenue", "Guests", "Tours", "Growth", ""})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	var revenue int64
	var guests, count int
	for _, m := range months {
		growth := "-"
		if m.GrowthPct != nil {
			growth = fmt.Sprintf("%+.1f%%", *m.GrowthPct)
		}
		peak := ""
		if m.IsPeak {
			peak = "peak"
		}
		tbl.AppendRow(table.Row{
			time.Month(m.Month).String()[:3],
			"¥" + humanize.Comma(m.Revenue),
			m.Guests,
			m.Count,
			growth,
			peak,
		})
		revenue += m.Revenue
		guests += m.Guests
		count += m.Count
	}
	tbl.AppendFooter(table.Row{"Total", "¥" + humanize.Comma(revenue), guests, count, "", ""})
	tbl.Render()
}

func renderSummary(w io.Writer, s service.SummaryReport, lang domain.Language) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(s.Period.Label(lang))
	tbl.AppendHeader(table.Row{"Tour", "Revenue", "Guests", "Tours"})
	for _, t := range s.ByType {
		tbl.AppendRow(table.Row{t.Type.Label(lang), "¥" + humanize.Comma(t.Revenue), t.Guests, t.Count})
	}
	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%.1f h, ¥%s/guest", s.Hours, humanize.Comma(int64(s.RevenuePerGuest))),
		"¥" + humanize.Comma(s.Revenue),
		s.Guests,
		s.Count,
	})
	tbl.Render()
}
