package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kukacrm/internal/query"
)

var dashboardTitles = map[query.Dimension]string{
	query.DimensionStatus:       "Status",
	query.DimensionSize:         "Porte",
	query.DimensionType:         "Tipo de estabelecimento",
	query.DimensionNeighborhood: "Top bairros",
}

// runDashboard prints the summary counters and one bar chart per dimension.
func runDashboard(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	clients, err := a.store.ListClients(ctx)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Lelé da Kuka · Painel"))
	b.WriteString("\n")
	b.WriteString(renderSummary(query.Summarize(clients)))
	b.WriteString("\n\n")
	for _, d := range query.Dimensions() {
		buckets, err := query.Aggregate(clients, d)
		if err != nil {
			return err
		}
		b.WriteString(renderBars(dashboardTitles[d], buckets))
		b.WriteString("\n")
	}

	fmt.Fprint(cmd.OutOrStdout(), b.String())
	return nil
}
