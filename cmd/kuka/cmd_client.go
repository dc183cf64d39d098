package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kukacrm/internal/enrich"
	"kukacrm/internal/export"
	"kukacrm/internal/logging"
	"kukacrm/internal/query"
	"kukacrm/internal/types"
)

// clientForm holds the client add flags.
type clientForm struct {
	name, razaoSocial, responsible, phone, address string
	neighborhood, city, state                      string
	documentType, document                         string
	clientType, clientSize, segment, status        string
	observations                                   string
	lat, lng                                       float64
	cnpjLookup                                     bool
}

var (
	form clientForm

	filterSearch       string
	filterNeighborhood string
	filterType         string
	filterSize         string

	exportOut     string
	exportGeoJSON bool

	// now is the export clock. Replaced in tests.
	now = time.Now
)

func addClientFlags(cmd *cobra.Command) {
	def := types.NewClientInput("")
	f := cmd.Flags()
	f.StringVar(&form.name, "name", "", "Nome fantasia")
	f.StringVar(&form.razaoSocial, "razao-social", "", "Razão social")
	f.StringVar(&form.responsible, "responsible", "", "Responsável")
	f.StringVar(&form.phone, "phone", "", "Telefone / WhatsApp")
	f.StringVar(&form.address, "address", "", "Endereço")
	f.StringVar(&form.neighborhood, "neighborhood", def.Neighborhood, "Bairro")
	f.StringVar(&form.city, "city", def.City, "Cidade")
	f.StringVar(&form.state, "state", def.State, "Estado")
	f.StringVar(&form.documentType, "document-type", string(def.DocumentType), "CPF or CNPJ")
	f.StringVar(&form.document, "document", "", "CPF/CNPJ number")
	f.StringVar(&form.clientType, "type", string(def.ClientType), "Lanchonete, Bar, Restaurante, Food Truck, Ponto Informal")
	f.StringVar(&form.clientSize, "size", string(def.ClientSize), "Pequeno, Médio, Grande")
	f.StringVar(&form.segment, "segment", def.Segment, "Segmento")
	f.StringVar(&form.status, "status", string(def.Status), "Ativo, Potencial, Inativo")
	f.StringVar(&form.observations, "observations", "", "Observações")
	f.Float64Var(&form.lat, "lat", 0, "Latitude (requires --lng)")
	f.Float64Var(&form.lng, "lng", 0, "Longitude (requires --lat)")
	f.BoolVar(&form.cnpjLookup, "cnpj-lookup", false, "Autofill from the public CNPJ registry")
}

func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&filterSearch, "search", "s", "", "Name, phone or code")
	f.StringVar(&filterNeighborhood, "neighborhood", "", "Exact neighborhood")
	f.StringVar(&filterType, "type", "", "Client type")
	f.StringVar(&filterSize, "size", "", "Client size")
}

func currentFilter() (query.Filter, error) {
	f := query.Filter{SearchTerm: filterSearch, Neighborhood: filterNeighborhood}
	if filterType != "" {
		t, err := types.ParseClientType(filterType)
		if err != nil {
			return f, err
		}
		f.ClientType = t
	}
	if filterSize != "" {
		s, err := types.ParseClientSize(filterSize)
		if err != nil {
			return f, err
		}
		f.ClientSize = s
	}
	return f, nil
}

// buildInput parses the form flags on top of the registration defaults.
func buildInput(registeredBy string) (types.ClientInput, error) {
	in := types.NewClientInput(registeredBy)
	in.Name = form.name
	in.RazaoSocial = form.razaoSocial
	in.ResponsibleName = form.responsible
	in.Phone = form.phone
	in.Address = form.address
	in.Neighborhood = form.neighborhood
	in.City = form.city
	in.State = form.state
	in.DocumentValue = form.document
	in.Segment = form.segment
	in.Observations = form.observations

	var err error
	if in.DocumentType, err = types.ParseDocumentType(form.documentType); err != nil {
		return in, err
	}
	if in.ClientType, err = types.ParseClientType(form.clientType); err != nil {
		return in, err
	}
	if in.ClientSize, err = types.ParseClientSize(form.clientSize); err != nil {
		return in, err
	}
	if in.Status, err = types.ParseClientStatus(form.status); err != nil {
		return in, err
	}
	return in, nil
}

// runClientAdd registers one client.
func runClientAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()
	out := cmd.OutOrStdout()

	user, _ := a.session.Current()
	latSet, lngSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lng")
	in, err := buildInput(user.Username)
	if err != nil {
		return err
	}

	var provider enrich.LocationProvider = enrich.NoLocation{}
	if latSet && lngSet {
		provider = enrich.StaticLocation{Latitude: form.lat, Longitude: form.lng}
	} else if latSet || lngSet {
		return &types.ValidationError{Field: "latitude", Reason: "latitude e longitude devem ser informadas juntas"}
	}
	enrich.ApplyLocation(ctx, provider, &in)

	if form.cnpjLookup {
		lookupInto(ctx, a.registry, &in, out)
	}

	client, err := a.store.CreateClient(ctx, in)
	if err != nil {
		return err
	}
	a.session.Audit().Event(logging.AuditClientCreate, client.ID, true)
	logger.Info("Client created", zap.String("id", client.ID), zap.String("by", user.Username))

	fmt.Fprintln(out, renderSuccess(fmt.Sprintf("Cliente #%s cadastrado: %s", client.ID, client.Name)))
	return nil
}

// lookupInto autofills in from the registry. Failures are shown and the
// typed values kept.
func lookupInto(ctx context.Context, registry enrich.DocumentRegistry, in *types.ClientInput, out io.Writer) {
	company, err := registry.LookupCNPJ(ctx, in.DocumentValue)
	if err != nil {
		logger.Debug("CNPJ lookup failed", zap.Error(err))
		fmt.Fprintln(out, renderError(err))
		return
	}
	company.Apply(in)
	fmt.Fprintln(out, mutedStyle.Render("Dados preenchidos pela Receita: "+company.RazaoSocial))
}

func loadFiltered(ctx context.Context, a *app) ([]types.Client, []types.Client, error) {
	f, err := currentFilter()
	if err != nil {
		return nil, nil, err
	}
	all, err := a.store.ListClients(ctx)
	if err != nil {
		return nil, nil, err
	}
	if f.IsEmpty() {
		return all, all, nil
	}
	return all, query.FilterClients(all, f), nil
}

// runClientList prints the clients matching the filter flags.
func runClientList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	all, shown, err := loadFiltered(ctx, a)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderClients(shown, len(all)))
	return nil
}

// runClientExport writes the filtered clients to the export directory.
func runClientExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	_, shown, err := loadFiltered(ctx, a)
	if err != nil {
		return err
	}

	var (
		data []byte
		name string
	)
	if exportGeoJSON {
		data, err = export.EncodeGeoJSON(shown)
		name = export.GeoJSONFilename(now())
	} else {
		data, err = export.EncodeCSV(shown)
		name = export.Filename(now())
	}
	if errors.Is(err, export.ErrNothingToExport) {
		fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(notice(err)))
		return nil
	}
	if err != nil {
		return err
	}

	dir := exportOut
	if dir == "" {
		dir = a.cfg.ExportDir(a.ws)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	a.session.Audit().Log(logging.AuditEvent{
		EventType: logging.AuditExportWritten,
		Target:    path,
		Success:   true,
		Fields:    map[string]interface{}{"clients": len(shown), "bytes": len(data)},
	})
	logger.Info("Export written", zap.String("path", path), zap.Int("clients", len(shown)))

	fmt.Fprintln(cmd.OutOrStdout(), renderSuccess(fmt.Sprintf("%d clientes exportados para %s", len(shown), path)))
	return nil
}
