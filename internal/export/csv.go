// Package export renders client collections as downloadable artifacts: the
// spreadsheet CSV and a GeoJSON hand-off for map renderers.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"kukacrm/internal/logging"
	"kukacrm/internal/types"
)

// BOM forces spreadsheet tools to read the file as UTF-8.
const BOM = "\ufeff"

// Delimiter separates CSV cells.
const Delimiter = ';'

// ErrNothingToExport is returned for an empty client sequence.
var ErrNothingToExport = errors.New("nenhum cliente para exportar")

// Headers are the CSV column labels in output order.
var Headers = []string{
	"Código", "Razão Social", "Nome Fantasia", "Responsável", "Telefone", "Endereço", "Bairro",
	"Cidade", "Estado", "Tipo Doc", "Documento", "Tipo Cliente", "Tamanho", "Segmento",
	"Status", "Latitude", "Longitude", "Cadastrado Por", "Data Cadastro", "Observações",
}

// Row renders c in Headers order. Blank city and state fall back to the
// Maceió/AL defaults; absent coordinates render as empty cells.
func Row(c types.Client) []string {
	return []string{
		c.ID,
		c.RazaoSocial,
		c.Name,
		c.ResponsibleName,
		c.Phone,
		c.Address,
		c.Neighborhood,
		orDefault(c.City, types.DefaultCity),
		orDefault(c.State, types.DefaultState),
		string(c.DocumentType),
		c.DocumentValue,
		string(c.ClientType),
		string(c.ClientSize),
		c.Segment,
		string(c.Status),
		formatCoord(c.Latitude),
		formatCoord(c.Longitude),
		c.RegisteredBy,
		c.CreatedAt,
		c.Observations,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// EncodeCSV renders clients as a BOM-prefixed, semicolon-delimited table.
// The header row is plain; every data cell is double-quoted with inner quotes
// doubled. Rows are joined by "\n" with no trailing newline.
func EncodeCSV(clients []types.Client) ([]byte, error) {
	if len(clients) == 0 {
		return nil, ErrNothingToExport
	}

	timer := logging.StartTimer(logging.CategoryExport, "EncodeCSV")
	defer timer.Stop()

	var buf bytes.Buffer
	buf.WriteString(BOM)
	buf.WriteString(strings.Join(Headers, string(Delimiter)))
	for _, c := range clients {
		buf.WriteByte('\n')
		for i, cell := range Row(c) {
			if i > 0 {
				buf.WriteByte(Delimiter)
			}
			buf.WriteString(quote(cell))
		}
	}

	logging.Get(logging.CategoryExport).StructuredLog("info", "Encoded clients as CSV", map[string]interface{}{
		"clients": len(clients),
		"bytes":   buf.Len(),
	})
	return buf.Bytes(), nil
}

func quote(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// DecodeCSV parses an EncodeCSV artifact back into rows, header first.
// It mirrors quote: a record ends at a "\n" outside quotes, a cell at a ';'
// outside quotes, and "" inside a quoted cell is one quote. Line breaks inside
// quoted cells are kept byte for byte, "\r\n" included.
func DecodeCSV(data []byte) ([][]string, error) {
	text := strings.TrimPrefix(string(data), BOM)
	if text == "" {
		return nil, nil
	}

	var (
		rows   [][]string
		row    []string
		cell   strings.Builder
		inCell bool // inside an open quoted cell
		closed bool // the current cell was quoted and its quote closed
		line   = 1
	)
	endCell := func() {
		row = append(row, cell.String())
		cell.Reset()
		closed = false
	}
	endRow := func() error {
		endCell()
		if len(row) != len(Headers) {
			return fmt.Errorf("failed to parse csv: record on line %d has %d fields, want %d", line, len(row), len(Headers))
		}
		rows = append(rows, row)
		row = nil
		return nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inCell {
			if ch == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					cell.WriteByte('"')
					i++
					continue
				}
				inCell, closed = false, true
				continue
			}
			if ch == '\n' {
				line++
			}
			cell.WriteByte(ch)
			continue
		}

		switch ch {
		case '"':
			if cell.Len() > 0 || closed {
				return nil, fmt.Errorf("failed to parse csv: bare quote on line %d", line)
			}
			inCell = true
		case Delimiter:
			endCell()
		case '\n':
			if err := endRow(); err != nil {
				return nil, err
			}
			line++
		default:
			if closed {
				return nil, fmt.Errorf("failed to parse csv: text after closing quote on line %d", line)
			}
			cell.WriteByte(ch)
		}
	}
	if inCell {
		return nil, fmt.Errorf("failed to parse csv: unterminated quoted cell on line %d", line)
	}
	if err := endRow(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Filename names the export after the UTC calendar date of now.
func Filename(now time.Time) string {
	return fmt.Sprintf("clientes_lele_da_kuka_%s.csv", now.UTC().Format("2006-01-02"))
}
