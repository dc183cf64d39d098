package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/genai"

	"kukacrm/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	model  string
	prompt string
	cfg    *genai.GenerateContentConfig
}

// fakeModel records calls and answers from respond.
type fakeModel struct {
	mu      sync.Mutex
	calls   []call
	respond func(prompt string) (string, error)
}

func (f *fakeModel) Generate(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{model, prompt, cfg})
	f.mu.Unlock()
	if f.respond == nil {
		return "ok: " + model, nil
	}
	return f.respond(prompt)
}

func clientsIn(neighborhoods ...string) []types.Client {
	out := make([]types.Client, len(neighborhoods))
	for i, n := range neighborhoods {
		out[i] = types.Client{ID: fmt.Sprint(1000 + i), Neighborhood: n, Status: types.ClientStatusAtivo}
	}
	return out
}

func TestAnalyzeMarket(t *testing.T) {
	m := &fakeModel{}
	a := New(m, DefaultConfig())

	got, err := a.AnalyzeMarket(context.Background(), "Onde abrir rota nova?", clientsIn("Farol", "Centro"))
	require.NoError(t, err)
	assert.Equal(t, "ok: gemini-3-pro-preview", got)

	require.Len(t, m.calls, 1)
	c := m.calls[0]
	assert.Contains(t, c.prompt, "estrategista de vendas para a Lelé da Kuka")
	assert.Contains(t, c.prompt, "Temos atualmente 2 clientes cadastrados.")
	assert.Contains(t, c.prompt, "Pergunta do usuário: Onde abrir rota nova?")
	require.NotNil(t, c.cfg.ThinkingConfig)
	assert.Equal(t, int32(32768), *c.cfg.ThinkingConfig.ThinkingBudget)
}

func TestAnalyzeMarket_BlankQuestion(t *testing.T) {
	m := &fakeModel{}
	_, err := New(m, DefaultConfig()).AnalyzeMarket(context.Background(), "   ", nil)
	assert.True(t, types.IsValidation(err))
	assert.Empty(t, m.calls)
}

func TestDegradesOnFailure(t *testing.T) {
	m := &fakeModel{respond: func(string) (string, error) { return "", errors.New("503") }}
	a := New(m, DefaultConfig())

	got, err := a.AnalyzeMarket(context.Background(), "pergunta", nil)
	require.NoError(t, err)
	assert.Equal(t, AnalysisUnavailable, got)

	got, err = a.SearchNearby(context.Background(), "mercados", DefaultLatitude, DefaultLongitude)
	require.NoError(t, err)
	assert.Equal(t, SearchUnavailable, got)
}

func TestDisabledWithoutModel(t *testing.T) {
	a := New(nil, Config{})
	assert.False(t, a.Enabled())

	got, err := a.AnalyzeMarket(context.Background(), "pergunta", nil)
	require.NoError(t, err)
	assert.Equal(t, AnalysisUnavailable, got)

	got, err = a.SearchNearby(context.Background(), "bares", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, SearchUnavailable, got)
}

func TestSearchNearby_MapsGrounding(t *testing.T) {
	m := &fakeModel{}
	a := New(m, DefaultConfig())

	_, err := a.SearchNearby(context.Background(), "supermercados", -9.6, -35.7)
	require.NoError(t, err)

	require.Len(t, m.calls, 1)
	c := m.calls[0]
	assert.Equal(t, "gemini-2.5-flash", c.model)
	assert.Contains(t, c.prompt, "Quais são os melhores supermercados próximos a Maceió-AL nas coordenadas -9.6, -35.7?")
	require.Len(t, c.cfg.Tools, 1)
	assert.NotNil(t, c.cfg.Tools[0].GoogleMaps)
	ll := c.cfg.ToolConfig.RetrievalConfig.LatLng
	assert.Equal(t, -9.6, *ll.Latitude)
	assert.Equal(t, -35.7, *ll.Longitude)

	_, err = a.SearchNearby(context.Background(), "", 0, 0)
	assert.True(t, types.IsValidation(err))
}

func TestNeighborhoodBrief_OrderAndConcurrency(t *testing.T) {
	var inflight, peak int32
	m := &fakeModel{respond: func(prompt string) (string, error) {
		n := atomic.AddInt32(&inflight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inflight, -1)
		if strings.Contains(prompt, "Centro") {
			return "", errors.New("quota")
		}
		return "plano", nil
	}}
	cfg := DefaultConfig()
	cfg.BriefConcurrency = 2
	a := New(m, cfg)

	clients := clientsIn("Farol", "Centro", "Farol", "Ipioca", "Farol", "Centro", "Jatiúca")
	briefs, err := a.NeighborhoodBrief(context.Background(), clients, 3)
	require.NoError(t, err)

	require.Len(t, briefs, 3)
	assert.Equal(t, Brief{Neighborhood: "Farol", Clients: 3, Insight: "plano"}, briefs[0])
	assert.Equal(t, Brief{Neighborhood: "Centro", Clients: 2, Insight: AnalysisUnavailable}, briefs[1])
	assert.Equal(t, "Ipioca", briefs[2].Neighborhood)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Len(t, m.calls, 3)
}

func TestNeighborhoodBrief_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &fakeModel{respond: func(string) (string, error) {
		cancel()
		return "", context.Canceled
	}}
	_, err := New(m, DefaultConfig()).NeighborhoodBrief(ctx, clientsIn("Farol"), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBriefPrompt(t *testing.T) {
	p := BriefPrompt("Farol", clientsIn("Farol", "Farol"))
	assert.Contains(t, p, "No bairro Farol temos 2 clientes cadastrados (2 ativos, 0 potenciais, 0 inativos).")
}
