package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kukacrm/internal/advisor"
)

var (
	nearbyLat float64
	nearbyLng float64
	briefTop  int
)

// runCNPJ prints the registry record for one CNPJ.
func runCNPJ(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.registry.LookupCNPJ(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cardStyle.Render(strings.Join([]string{
		titleStyle.Render(c.NomeFantasia),
		"Razão social: " + c.RazaoSocial,
		"Endereço: " + c.Logradouro,
		"Bairro: " + c.Bairro,
		fmt.Sprintf("%s - %s", c.Cidade, c.UF),
	}, "\n")))
	return nil
}

// runAIStrategy asks the strategist a question about the current base.
func runAIStrategy(cmd *cobra.Command, args []string) error {
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

	question := strings.Join(args, " ")
	logger.Debug("Strategy request", zap.Int("clients", len(clients)), zap.Bool("enabled", a.advisor.Enabled()))
	answer, err := a.advisor.AnalyzeMarket(ctx, question, clients)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(answer))
	return nil
}

// runAINearby searches places near --lat/--lng (Maceió map center by default).
func runAINearby(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	lat, lng := advisor.DefaultLatitude, advisor.DefaultLongitude
	if cmd.Flags().Changed("lat") {
		lat = nearbyLat
	}
	if cmd.Flags().Changed("lng") {
		lng = nearbyLng
	}

	answer, err := a.advisor.SearchNearby(ctx, strings.Join(args, " "), lat, lng)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(answer))
	return nil
}

// runAIBrief prints one action plan per top neighborhood.
func runAIBrief(cmd *cobra.Command, args []string) error {
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

	briefs, err := a.advisor.NeighborhoodBrief(ctx, clients, briefTop)
	if err != nil {
		return err
	}
	if len(briefs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Nenhum cliente cadastrado."))
		return nil
	}

	var md strings.Builder
	for _, b := range briefs {
		fmt.Fprintf(&md, "## %s (%d clientes)\n\n%s\n\n", b.Neighborhood, b.Clients, b.Insight)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(md.String()))
	return nil
}
