package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"kukacrm/internal/export"
	"kukacrm/internal/query"
	"kukacrm/internal/types"
)

// Lelé da Kuka palette
var (
	brandOrange = lipgloss.Color("#F97316")
	brandYellow = lipgloss.Color("#FACC15")
	mutedGray   = lipgloss.Color("#6B7280")
	errorRed    = lipgloss.Color("#E53935")
	successLime = lipgloss.Color("#8BC34A")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(brandOrange)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(brandYellow)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedGray)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(errorRed)
	successStyle = lipgloss.NewStyle().Foreground(successLime)
	barStyle     = lipgloss.NewStyle().Foreground(brandOrange)
	cardStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brandOrange).
			Padding(0, 1)
)

const barWidth = 30

// notice maps an error to the message shown to the operator.
func notice(err error) string {
	var (
		verr *types.ValidationError
		nf   *types.NotFoundError
		pf   *types.PersistenceFault
	)
	switch {
	case errors.Is(err, types.ErrInvalidCredentials):
		return "Usuário ou senha inválidos."
	case errors.Is(err, types.ErrForbidden):
		return "Acesso restrito a administradores."
	case errors.Is(err, types.ErrGuardViolation):
		return "Não é possível excluir o administrador principal."
	case errors.Is(err, export.ErrNothingToExport):
		return "Nenhum cliente para exportar."
	case errors.As(err, &verr):
		return "Dados inválidos: " + verr.Error()
	case errors.As(err, &nf):
		if nf.Kind == "CNPJ" {
			return "Não foi possível encontrar dados para este CNPJ automaticamente. Por favor, preencha manualmente."
		}
		return nf.Error()
	case errors.As(err, &pf):
		return "Falha no armazenamento local: " + pf.Error()
	}
	return err.Error()
}

func renderError(err error) string {
	return errorStyle.Render("✗ " + notice(err))
}

func renderSuccess(msg string) string {
	return successStyle.Render("✓ " + msg)
}

// renderClients prints one card per client plus the "Mostrando X de Y" footer.
func renderClients(shown []types.Client, total int) string {
	var b strings.Builder
	for _, c := range shown {
		lines := []string{
			titleStyle.Render(fmt.Sprintf("#%s %s", c.ID, c.Name)),
			fmt.Sprintf("%s · %s · %s · %s", c.ClientType, c.ClientSize, c.Segment, c.Status),
			fmt.Sprintf("%s, %s", c.Address, c.Neighborhood),
			fmt.Sprintf("Responsável: %s  Tel: %s", c.ResponsibleName, c.Phone),
			mutedStyle.Render(c.WhatsAppURL()),
		}
		if c.HasLocation() {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("GPS %.5f, %.5f", *c.Latitude, *c.Longitude)))
		}
		b.WriteString(cardStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Mostrando %d de %d clientes", len(shown), total)))
	return b.String()
}

// renderBars draws one horizontal bar per bucket scaled to the largest count.
func renderBars(title string, buckets []query.Bucket) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	if len(buckets) == 0 {
		b.WriteString(mutedStyle.Render("  (sem dados)"))
		b.WriteString("\n")
		return b.String()
	}

	max, width := 0, 0
	for _, bk := range buckets {
		if bk.Count > max {
			max = bk.Count
		}
		if w := lipgloss.Width(bk.Key); w > width {
			width = w
		}
	}
	for _, bk := range buckets {
		n := 0
		if max > 0 {
			n = bk.Count * barWidth / max
		}
		pad := strings.Repeat(" ", width-lipgloss.Width(bk.Key))
		fmt.Fprintf(&b, "  %s%s %s %d\n", bk.Key, pad, barStyle.Render(strings.Repeat("█", n)), bk.Count)
	}
	return b.String()
}

func renderSummary(s query.Summary) string {
	return cardStyle.Render(fmt.Sprintf("%s %d   %s %d   %s %d   %s %d",
		headerStyle.Render("Total"), s.Total,
		headerStyle.Render("Ativos"), s.Active,
		headerStyle.Render("Potenciais"), s.Potential,
		headerStyle.Render("Inativos"), s.Inactive))
}

func renderUsers(users []types.User) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-24s %-16s %s", "ID", "USUÁRIO", "PERFIL")))
	b.WriteString("\n")
	for _, u := range users {
		fmt.Fprintf(&b, "%-24s %-16s %s\n", u.ID, u.Username, u.Role.Label())
	}
	return b.String()
}

// renderMarkdown renders AI answers. Falls back to the raw text when the
// terminal renderer cannot be built.
func renderMarkdown(md string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
