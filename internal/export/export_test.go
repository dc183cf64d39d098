package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"kukacrm/internal/types"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func sampleClient() types.Client {
	return types.Client{
		ID:              "1000",
		Name:            "Café Sol",
		RazaoSocial:     "Sol Alimentos LTDA",
		ResponsibleName: "Ana",
		Phone:           "(82) 98888-7777",
		Address:         "Av. Álvaro Otacílio, 100",
		Neighborhood:    "Ponta Verde",
		DocumentType:    types.DocumentCNPJ,
		DocumentValue:   "12.345.678/0001-90",
		ClientType:      types.ClientTypeLanchonete,
		ClientSize:      types.ClientSizeMedio,
		Segment:         "Fast Food",
		Status:          types.ClientStatusAtivo,
		Latitude:        ptr(-9.6658),
		Longitude:       ptr(-35.7353),
		RegisteredBy:    "admin",
		CreatedAt:       "2025-03-14T12:30:45.123Z",
		Observations:    "entrega às 7h",
	}
}

func TestEncodeCSV_Layout(t *testing.T) {
	data, err := EncodeCSV([]types.Client{sampleClient()})
	require.NoError(t, err)

	text := string(data)
	require.True(t, strings.HasPrefix(text, BOM), "missing BOM")
	assert.False(t, strings.HasSuffix(text, "\n"))

	lines := strings.Split(strings.TrimPrefix(text, BOM), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(Headers, ";"), lines[0])
	assert.Len(t, Headers, 20)
	assert.True(t, strings.HasPrefix(lines[1], `"1000";"Sol Alimentos LTDA";"Café Sol";`))
	assert.Contains(t, lines[1], `;"Maceió";"AL";`)
	assert.Contains(t, lines[1], `;"-9.6658";"-35.7353";`)
}

func TestEncodeCSV_Empty(t *testing.T) {
	data, err := EncodeCSV(nil)
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.Nil(t, data)
}

func TestCSVRoundTrip(t *testing.T) {
	c := sampleClient()
	c.Name = `A;B"C`
	c.Observations = `linha "um"; linha dois`

	data, err := EncodeCSV([]types.Client{c})
	require.NoError(t, err)

	rows, err := DecodeCSV(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, `A;B"C`, rows[1][2])

	if diff := cmp.Diff(Row(c), rows[1]); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVRoundTrip_ManualUnquote(t *testing.T) {
	c := sampleClient()
	c.Name = `A;B"C`

	data, err := EncodeCSV([]types.Client{c})
	require.NoError(t, err)

	line := strings.Split(string(data), "\n")[1]
	// Name is the third column; the two cells before it hold no delimiter.
	rest := strings.SplitN(line, `";"`, 3)[2]
	quoted := rest[:strings.Index(rest, `";"Ana"`)]
	assert.Equal(t, `A;B"C`, strings.ReplaceAll(quoted, `""`, `"`))
}

func TestCSVRoundTrip_MultilineObservations(t *testing.T) {
	unix := sampleClient()
	unix.Observations = "linha um\nlinha dois"
	windows := sampleClient()
	windows.ID = "1001"
	windows.Observations = "a\r\nb"
	windows.Name = "Bar \"Novo\";\nFilial"

	clients := []types.Client{unix, windows}
	data, err := EncodeCSV(clients)
	require.NoError(t, err)

	rows, err := DecodeCSV(data)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	for i, c := range clients {
		if diff := cmp.Diff(Row(c), rows[i+1]); diff != "" {
			t.Errorf("client %s mismatch (-want +got):\n%s", c.ID, diff)
		}
	}
	assert.Equal(t, "a\r\nb", rows[2][19])
}

func TestDecodeCSV_Malformed(t *testing.T) {
	header := strings.Join(Headers, ";")
	cell := `"x"`
	row := strings.TrimSuffix(strings.Repeat(cell+";", len(Headers)), ";")

	tests := []struct {
		name string
		data string
	}{
		{"unterminated quote", BOM + header + "\n" + strings.Replace(row, `"x"`, `"x`, 1)},
		{"text after quote", BOM + header + "\n" + strings.Replace(row, `"x"`, `"x"y`, 1)},
		{"short record", BOM + header + "\n" + `"1000";"A"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCSV([]byte(tt.data))
			assert.Error(t, err)
		})
	}

	rows, err := DecodeCSV([]byte(BOM + header + "\n" + row))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRow_Defaults(t *testing.T) {
	c := sampleClient()
	c.City = "Arapiraca"
	c.State = ""
	c.Latitude = nil
	c.Longitude = nil

	row := Row(c)
	assert.Equal(t, "Arapiraca", row[7])
	assert.Equal(t, "AL", row[8])
	assert.Equal(t, "", row[15])
	assert.Equal(t, "", row[16])

	c.Latitude = ptr(0)
	c.Longitude = ptr(0)
	row = Row(c)
	assert.Equal(t, "0", row[15])
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 1, 2, 23, 30, 0, 0, time.FixedZone("BRT", -3*3600))
	assert.Equal(t, "clientes_lele_da_kuka_2025-01-03.csv", Filename(now))
	assert.Equal(t, "clientes_lele_da_kuka_2025-01-03.geojson", GeoJSONFilename(now))
}

func TestEncodeGeoJSON(t *testing.T) {
	located := sampleClient()
	unlocated := sampleClient()
	unlocated.ID = "1001"
	unlocated.Latitude = nil
	unlocated.Longitude = nil

	data, err := EncodeGeoJSON([]types.Client{located, unlocated})
	require.NoError(t, err)

	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	assert.Equal(t, "Point", f.Geometry.Type)
	assert.Equal(t, [2]float64{-35.7353, -9.6658}, f.Geometry.Coordinates)
	assert.Equal(t, "1000", f.Properties.ID)
	assert.Equal(t, "https://wa.me/5582988887777", f.Properties.WhatsApp)

	_, err = EncodeGeoJSON([]types.Client{unlocated})
	assert.ErrorIs(t, err, ErrNothingToExport)
}
