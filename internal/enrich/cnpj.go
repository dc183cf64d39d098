// Package enrich wraps the outside sources that prefill the client form: the
// public CNPJ registry and the device position. Failures here never block a
// registration; callers keep whatever the operator already typed.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kukacrm/internal/logging"
	"kukacrm/internal/types"
)

// CNPJLength is the number of digits in a CNPJ.
const CNPJLength = 14

// Company is the normalized registry record for one CNPJ.
type Company struct {
	RazaoSocial  string
	NomeFantasia string
	Logradouro   string
	Bairro       string
	Cidade       string
	UF           string
}

// Apply copies the registry data into in. Address is kept when the registry
// has none, and the neighborhood only changes when the registry value is one
// of the suggested neighborhoods.
func (c Company) Apply(in *types.ClientInput) {
	in.RazaoSocial = c.RazaoSocial
	in.Name = c.NomeFantasia
	if c.Logradouro != "" {
		in.Address = c.Logradouro
	}
	if types.IsSuggestedNeighborhood(c.Bairro) {
		in.Neighborhood = c.Bairro
	}
	in.City = orDefault(c.Cidade, types.DefaultCity)
	in.State = orDefault(c.UF, types.DefaultState)
}

// DocumentRegistry resolves a CNPJ into company data.
type DocumentRegistry interface {
	LookupCNPJ(ctx context.Context, cnpj string) (Company, error)
}

// =============================================================================
// BRASILAPI REGISTRY
// =============================================================================

// BrasilAPIRegistry queries the free BrasilAPI CNPJ endpoint.
type BrasilAPIRegistry struct {
	baseURL string
	client  *http.Client
}

// NewBrasilAPIRegistry creates a registry client. An empty baseURL selects
// the public service.
func NewBrasilAPIRegistry(baseURL string, timeout time.Duration) *BrasilAPIRegistry {
	if baseURL == "" {
		baseURL = "https://brasilapi.com.br"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &BrasilAPIRegistry{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// LookupCNPJ strips formatting from cnpj and fetches the company. A value
// without exactly 14 digits is a *types.ValidationError and sends nothing;
// any transport or HTTP failure is a *types.NotFoundError.
func (r *BrasilAPIRegistry) LookupCNPJ(ctx context.Context, cnpj string) (Company, error) {
	digits := types.OnlyDigits(cnpj)
	if len(digits) != CNPJLength {
		return Company{}, &types.ValidationError{Field: "documentValue", Reason: "digite um CNPJ válido com 14 dígitos"}
	}

	timer := logging.StartTimer(logging.CategoryEnrich, "LookupCNPJ")
	defer timer.Stop()

	notFound := &types.NotFoundError{Kind: "CNPJ", Key: digits}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", r.baseURL+"/api/cnpj/v1/"+digits, nil)
	if err != nil {
		return Company{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		logging.EnrichWarn("CNPJ %s lookup failed: %v", digits, err)
		return Company{}, notFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logging.EnrichWarn("CNPJ %s: registry returned status %d: %s", digits, resp.StatusCode, string(bodyBytes))
		return Company{}, notFound
	}

	var result brasilAPICompany
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logging.EnrichWarn("CNPJ %s: failed to decode response: %v", digits, err)
		return Company{}, notFound
	}

	logging.Enrich("CNPJ %s resolved to %q", digits, result.RazaoSocial)
	return result.normalize(), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// =============================================================================
// BRASILAPI TYPES
// =============================================================================

type brasilAPICompany struct {
	RazaoSocial  string `json:"razao_social"`
	NomeFantasia string `json:"nome_fantasia"`
	Logradouro   string `json:"logradouro"`
	Numero       string `json:"numero"`
	Bairro       string `json:"bairro"`
	Municipio    string `json:"municipio"`
	UF           string `json:"uf"`
}

func (b brasilAPICompany) normalize() Company {
	street := b.Logradouro
	if street != "" && b.Numero != "" {
		street += ", " + b.Numero
	}
	return Company{
		RazaoSocial:  b.RazaoSocial,
		NomeFantasia: orDefault(b.NomeFantasia, b.RazaoSocial),
		Logradouro:   street,
		Bairro:       b.Bairro,
		Cidade:       orDefault(b.Municipio, types.DefaultCity),
		UF:           orDefault(b.UF, types.DefaultState),
	}
}
