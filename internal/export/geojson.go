package export

import (
	"encoding/json"
	"strings"
	"time"

	"kukacrm/internal/logging"
	"kukacrm/internal/types"
)

// FeatureCollection is the GeoJSON document handed to map renderers.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one located client.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   Geometry          `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// Geometry is a GeoJSON Point. Coordinates are [longitude, latitude].
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// FeatureProperties carries what a map popup shows.
type FeatureProperties struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Neighborhood string             `json:"neighborhood"`
	Status       types.ClientStatus `json:"status"`
	ClientType   types.ClientType   `json:"clientType"`
	Phone        string             `json:"phone"`
	WhatsApp     string             `json:"whatsapp"`
}

// Collect builds a FeatureCollection from the clients that have both
// coordinates. Others are skipped.
func Collect(clients []types.Client) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
	for _, c := range clients {
		if !c.HasLocation() {
			continue
		}
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{*c.Longitude, *c.Latitude},
			},
			Properties: FeatureProperties{
				ID:           c.ID,
				Name:         c.Name,
				Neighborhood: c.Neighborhood,
				Status:       c.Status,
				ClientType:   c.ClientType,
				Phone:        c.Phone,
				WhatsApp:     c.WhatsAppURL(),
			},
		})
	}
	return fc
}

// EncodeGeoJSON renders the located clients as indented GeoJSON.
func EncodeGeoJSON(clients []types.Client) ([]byte, error) {
	fc := Collect(clients)
	if len(fc.Features) == 0 {
		return nil, ErrNothingToExport
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, err
	}
	logging.Export("Encoded %d of %d clients as GeoJSON", len(fc.Features), len(clients))
	return data, nil
}

// GeoJSONFilename names the map hand-off after the UTC calendar date of now.
func GeoJSONFilename(now time.Time) string {
	return strings.TrimSuffix(Filename(now), ".csv") + ".geojson"
}
