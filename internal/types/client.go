// Package types holds the CRM records shared by every kukacrm package:
// merchant clients, login principals and the error taxonomy used to report
// failures back to the operator.
package types

import (
	"strings"
	"unicode"
)

// InitialClientCode is the identifier given to the first client ever stored.
const InitialClientCode = 1000

// Location defaults applied when a record leaves city or state blank.
const (
	DefaultCity  = "Maceió"
	DefaultState = "AL"
)

// Neighborhoods lists the suggested Maceió neighborhoods offered by the form.
var Neighborhoods = []string{
	"Antares", "Benedito Bentes", "Centro", "Cruz das Almas", "Farol", "Guaxuma", "Ipioca",
	"Jacarecica", "Jatiúca", "Levada", "Mangabeiras", "Pajuçara", "Ponta Verde", "Serraria", "Tabuleiro do Martins",
}

// Segments lists the suggested business segments. Segment stays free-form.
var Segments = []string{
	"Fast Food", "Bar Noturno", "Restaurante Executivo", "Padaria", "Conveniência", "Delivery", "Outros",
}

// IsSuggestedNeighborhood reports whether name is one of Neighborhoods.
func IsSuggestedNeighborhood(name string) bool {
	for _, n := range Neighborhoods {
		if n == name {
			return true
		}
	}
	return false
}

// ClientType is the kind of establishment.
type ClientType string

const (
	ClientTypeLanchonete    ClientType = "Lanchonete"
	ClientTypeBar           ClientType = "Bar"
	ClientTypeRestaurante   ClientType = "Restaurante"
	ClientTypeFoodTruck     ClientType = "Food Truck"
	ClientTypePontoInformal ClientType = "Ponto Informal"
)

// ClientTypes returns every ClientType in declaration order.
func ClientTypes() []ClientType {
	return []ClientType{
		ClientTypeLanchonete,
		ClientTypeBar,
		ClientTypeRestaurante,
		ClientTypeFoodTruck,
		ClientTypePontoInformal,
	}
}

// Valid reports whether t is a declared ClientType.
func (t ClientType) Valid() bool {
	switch t {
	case ClientTypeLanchonete, ClientTypeBar, ClientTypeRestaurante, ClientTypeFoodTruck, ClientTypePontoInformal:
		return true
	}
	return false
}

// ParseClientType converts a wire string into a ClientType.
func ParseClientType(s string) (ClientType, error) {
	t := ClientType(s)
	if !t.Valid() {
		return "", &ValidationError{Field: "clientType", Reason: "tipo de cliente desconhecido: " + s}
	}
	return t, nil
}

// ClientSize is the establishment size bucket.
type ClientSize string

const (
	ClientSizePequeno ClientSize = "Pequeno"
	ClientSizeMedio   ClientSize = "Médio"
	ClientSizeGrande  ClientSize = "Grande"
)

// ClientSizes returns every ClientSize in declaration order.
func ClientSizes() []ClientSize {
	return []ClientSize{ClientSizePequeno, ClientSizeMedio, ClientSizeGrande}
}

// Valid reports whether s is a declared ClientSize.
func (s ClientSize) Valid() bool {
	switch s {
	case ClientSizePequeno, ClientSizeMedio, ClientSizeGrande:
		return true
	}
	return false
}

// ParseClientSize converts a wire string into a ClientSize.
func ParseClientSize(s string) (ClientSize, error) {
	size := ClientSize(s)
	if !size.Valid() {
		return "", &ValidationError{Field: "clientSize", Reason: "porte desconhecido: " + s}
	}
	return size, nil
}

// ClientStatus is the commercial relationship stage.
type ClientStatus string

const (
	ClientStatusAtivo     ClientStatus = "Ativo"
	ClientStatusPotencial ClientStatus = "Potencial"
	ClientStatusInativo   ClientStatus = "Inativo"
)

// ClientStatuses returns every ClientStatus in declaration order.
func ClientStatuses() []ClientStatus {
	return []ClientStatus{ClientStatusAtivo, ClientStatusPotencial, ClientStatusInativo}
}

// Valid reports whether s is a declared ClientStatus.
func (s ClientStatus) Valid() bool {
	switch s {
	case ClientStatusAtivo, ClientStatusPotencial, ClientStatusInativo:
		return true
	}
	return false
}

// ParseClientStatus converts a wire string into a ClientStatus.
func ParseClientStatus(s string) (ClientStatus, error) {
	status := ClientStatus(s)
	if !status.Valid() {
		return "", &ValidationError{Field: "status", Reason: "status desconhecido: " + s}
	}
	return status, nil
}

// DocumentType is the national registry the document value belongs to.
type DocumentType string

const (
	DocumentCPF  DocumentType = "CPF"
	DocumentCNPJ DocumentType = "CNPJ"
)

// DocumentTypes returns every DocumentType in declaration order.
func DocumentTypes() []DocumentType {
	return []DocumentType{DocumentCPF, DocumentCNPJ}
}

// Valid reports whether d is a declared DocumentType.
func (d DocumentType) Valid() bool {
	switch d {
	case DocumentCPF, DocumentCNPJ:
		return true
	}
	return false
}

// ParseDocumentType converts a wire string into a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	d := DocumentType(strings.ToUpper(s))
	if !d.Valid() {
		return "", &ValidationError{Field: "documentType", Reason: "tipo de documento desconhecido: " + s}
	}
	return d, nil
}

// Client is one registered or prospective merchant.
// JSON keys match the persisted blob layout; missing keys decode to zero values.
type Client struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	RazaoSocial     string       `json:"razaoSocial"`
	ResponsibleName string       `json:"responsibleName"`
	Phone           string       `json:"phone"`
	Address         string       `json:"address"`
	Neighborhood    string       `json:"neighborhood"`
	City            string       `json:"city"`
	State           string       `json:"state"`
	DocumentType    DocumentType `json:"documentType"`
	DocumentValue   string       `json:"documentValue"`
	ClientType      ClientType   `json:"clientType"`
	ClientSize      ClientSize   `json:"clientSize"`
	Segment         string       `json:"segment"`
	Status          ClientStatus `json:"status"`
	Latitude        *float64     `json:"latitude"`
	Longitude       *float64     `json:"longitude"`
	RegisteredBy    string       `json:"registeredBy"`
	CreatedAt       string       `json:"createdAt"`
	Observations    string       `json:"observations"`
}

// HasLocation reports whether both coordinates were captured.
func (c Client) HasLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// WhatsAppURL builds a wa.me link from the phone digits with the Brazil prefix.
func (c Client) WhatsAppURL() string {
	return "https://wa.me/55" + OnlyDigits(c.Phone)
}

// ClientInput is a Client before the store assigns id and createdAt.
type ClientInput struct {
	Name            string
	RazaoSocial     string
	ResponsibleName string
	Phone           string
	Address         string
	Neighborhood    string
	City            string
	State           string
	DocumentType    DocumentType
	DocumentValue   string
	ClientType      ClientType
	ClientSize      ClientSize
	Segment         string
	Status          ClientStatus
	Latitude        *float64
	Longitude       *float64
	RegisteredBy    string
	Observations    string
}

// NewClientInput returns an input preloaded with the form defaults.
func NewClientInput(registeredBy string) ClientInput {
	return ClientInput{
		Neighborhood: Neighborhoods[0],
		City:         DefaultCity,
		State:        DefaultState,
		DocumentType: DocumentCNPJ,
		ClientType:   ClientTypeLanchonete,
		ClientSize:   ClientSizePequeno,
		Segment:      Segments[0],
		Status:       ClientStatusPotencial,
		RegisteredBy: registeredBy,
	}
}

// Validate checks the fields the registration form marks as required and the
// enum-valued fields. It returns the first *ValidationError found.
func (in ClientInput) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"documentValue", in.DocumentValue},
		{"name", in.Name},
		{"responsibleName", in.ResponsibleName},
		{"phone", in.Phone},
		{"address", in.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Reason: "campo obrigatório"}
		}
	}
	if !in.DocumentType.Valid() {
		return &ValidationError{Field: "documentType", Reason: "tipo de documento inválido"}
	}
	if !in.ClientType.Valid() {
		return &ValidationError{Field: "clientType", Reason: "tipo de cliente inválido"}
	}
	if !in.ClientSize.Valid() {
		return &ValidationError{Field: "clientSize", Reason: "porte inválido"}
	}
	if !in.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "status inválido"}
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return &ValidationError{Field: "latitude", Reason: "latitude e longitude devem ser informadas juntas"}
	}
	return nil
}

// ToClient builds the stored record for the given identifier and timestamp.
func (in ClientInput) ToClient(id, createdAt string) Client {
	return Client{
		ID:              id,
		Name:            in.Name,
		RazaoSocial:     in.RazaoSocial,
		ResponsibleName: in.ResponsibleName,
		Phone:           in.Phone,
		Address:         in.Address,
		Neighborhood:    in.Neighborhood,
		City:            in.City,
		State:           in.State,
		DocumentType:    in.DocumentType,
		DocumentValue:   in.DocumentValue,
		ClientType:      in.ClientType,
		ClientSize:      in.ClientSize,
		Segment:         in.Segment,
		Status:          in.Status,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		RegisteredBy:    in.RegisteredBy,
		CreatedAt:       createdAt,
		Observations:    in.Observations,
	}
}

// OnlyDigits strips every non-digit rune from s.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}
