// Package advisor asks Gemini for sales insight about the client base.
//
// Every call degrades: a missing key, a transport error or an empty answer
// produces a fixed notice instead of an error, so the surrounding workflow
// keeps going. Only malformed input and cancellation are returned as errors.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"kukacrm/internal/logging"
	"kukacrm/internal/query"
	"kukacrm/internal/types"
)

// Degraded notices shown in place of an answer.
const (
	AnalysisUnavailable = "Erro ao processar análise complexa."
	SearchUnavailable   = "Não foi possível realizar a busca no momento."
)

// Map center used when no position is given for a nearby search.
const (
	DefaultLatitude  = -9.6498
	DefaultLongitude = -35.7089
)

// Config selects models and limits.
type Config struct {
	AnalysisModel    string
	MapsModel        string
	ThinkingBudget   int32
	BriefConcurrency int
}

// DefaultConfig mirrors the config package defaults.
func DefaultConfig() Config {
	return Config{
		AnalysisModel:    "gemini-3-pro-preview",
		MapsModel:        "gemini-2.5-flash",
		ThinkingBudget:   32768,
		BriefConcurrency: 3,
	}
}

// Advisor builds prompts and calls the model.
type Advisor struct {
	model Model
	cfg   Config
	audit *logging.AuditLogger
}

// New returns an advisor. A nil model disables it: every call returns the
// degraded notice.
func New(model Model, cfg Config) *Advisor {
	def := DefaultConfig()
	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = def.AnalysisModel
	}
	if cfg.MapsModel == "" {
		cfg.MapsModel = def.MapsModel
	}
	if cfg.BriefConcurrency <= 0 {
		cfg.BriefConcurrency = def.BriefConcurrency
	}
	return &Advisor{model: model, cfg: cfg, audit: logging.Audit()}
}

// WithAudit stamps AI audit events with a session logger.
func (a *Advisor) WithAudit(audit *logging.AuditLogger) *Advisor {
	a.audit = audit
	return a
}

// Enabled reports whether a model is configured.
func (a *Advisor) Enabled() bool {
	return a.model != nil
}

// StrategyPrompt frames a free-text question for the sales strategist.
func StrategyPrompt(clientCount int, question string) string {
	return fmt.Sprintf("Atue como um estrategista de vendas para a Lelé da Kuka em Maceió-AL.\n"+
		"Temos atualmente %d clientes cadastrados.\n"+
		"Pergunta do usuário: %s", clientCount, question)
}

// NearbyPrompt asks for places of kind query around a position.
func NearbyPrompt(query string, lat, lng float64) string {
	return fmt.Sprintf("Quais são os melhores %s próximos a Maceió-AL nas coordenadas %v, %v? "+
		"Liste 3 opções com uma breve descrição do porquê são relevantes para o comércio local.", query, lat, lng)
}

// BriefPrompt asks for a short action plan for one neighborhood.
func BriefPrompt(neighborhood string, clients []types.Client) string {
	s := query.Summarize(clients)
	return fmt.Sprintf("Atue como um estrategista de vendas para a Lelé da Kuka em Maceió-AL.\n"+
		"No bairro %s temos %d clientes cadastrados (%d ativos, %d potenciais, %d inativos).\n"+
		"Sugira em até 5 tópicos curtos como aumentar as vendas neste bairro.",
		neighborhood, s.Total, s.Active, s.Potential, s.Inactive)
}

// AnalyzeMarket answers question with the thinking model.
func (a *Advisor) AnalyzeMarket(ctx context.Context, question string, clients []types.Client) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", &types.ValidationError{Field: "question", Reason: "campo obrigatório"}
	}
	cfg := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(a.cfg.ThinkingBudget)},
	}
	return a.generate(ctx, a.cfg.AnalysisModel, StrategyPrompt(len(clients), question), cfg, AnalysisUnavailable)
}

// SearchNearby asks the maps-grounded model for places of kind q near lat/lng.
func (a *Advisor) SearchNearby(ctx context.Context, q string, lat, lng float64) (string, error) {
	if strings.TrimSpace(q) == "" {
		return "", &types.ValidationError{Field: "query", Reason: "campo obrigatório"}
	}
	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}},
		ToolConfig: &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{Latitude: genai.Ptr(lat), Longitude: genai.Ptr(lng)},
			},
		},
	}
	return a.generate(ctx, a.cfg.MapsModel, NearbyPrompt(q, lat, lng), cfg, SearchUnavailable)
}

// Brief is the insight for one neighborhood.
type Brief struct {
	Neighborhood string
	Clients      int
	Insight      string
}

// NeighborhoodBrief asks one analysis per top-n neighborhood concurrently.
// Results keep the aggregation order. A failed neighborhood gets the
// degraded notice; only cancellation aborts the whole brief.
func (a *Advisor) NeighborhoodBrief(ctx context.Context, clients []types.Client, n int) ([]Brief, error) {
	buckets, err := query.Aggregate(clients, query.DimensionNeighborhood)
	if err != nil {
		return nil, err
	}
	if n > 0 && n < len(buckets) {
		buckets = buckets[:n]
	}

	briefs := make([]Brief, len(buckets))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.cfg.BriefConcurrency)

	for i, b := range buckets {
		members := query.FilterClients(clients, query.Filter{Neighborhood: b.Key})
		eg.Go(func() error {
			cfg := &genai.GenerateContentConfig{
				ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(a.cfg.ThinkingBudget)},
			}
			insight, err := a.generate(egCtx, a.cfg.AnalysisModel, BriefPrompt(b.Key, members), cfg, AnalysisUnavailable)
			if err != nil {
				return err
			}
			briefs[i] = Brief{Neighborhood: b.Key, Clients: b.Count, Insight: insight}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return briefs, nil
}

// generate calls the model and degrades every failure except cancellation
// to fallback.
func (a *Advisor) generate(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig, fallback string) (string, error) {
	if a.model == nil {
		logging.API("Advisor disabled (no API key); returning notice for %s", model)
		return fallback, nil
	}

	logging.API("Calling %s (%d prompt chars)", model, len(prompt))
	text, err := a.model.Generate(ctx, model, prompt, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logging.APIError("%s failed: %v", model, err)
		a.audit.Failure(logging.AuditAIError, model, err)
		return fallback, nil
	}
	a.audit.Event(logging.AuditAIRequest, model, true)
	return text, nil
}
