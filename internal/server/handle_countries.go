package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

// CountrySource serves the reference dataset, whatever cache sits behind it.
type CountrySource interface {
	Countries(ctx context.Context) ([]worldquiz.CountryRecord, error)
}

// CountryFeature is the globe-friendly shape the map component consumes.
type CountryFeature struct {
	ID         string            `json:"id"`
	Properties CountryProperties `json:"properties"`
}

type CountryProperties struct {
	Name    string    `json:"NAME"`
	Capital string    `json:"CAPITAL"`
	PopEst  int64     `json:"POP_EST"`
	Area    float64   `json:"AREA"`
	Flag    string    `json:"FLAG"`
	LatLng  []float64 `json:"LATLNG"`
	Region  string    `json:"REGION"`
}

// EnrichedCountry is the flat dataset shape with travel facts included.
type EnrichedCountry struct {
	CommonName         string  `json:"common_name"`
	OfficialName       string  `json:"official_name"`
	Capital            string  `json:"capital"`
	Region             string  `json:"region"`
	Population         int64   `json:"population"`
	Area               float64 `json:"area"`
	Souvenirs          string  `json:"souvenirs"`
	TraditionalCuisine string  `json:"traditional_cuisine"`
	Flag               string  `json:"flag"`
	IsoCode            string  `json:"iso_code"`
}

func handleCountries(logger *slog.Logger, source CountrySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := source.Countries(r.Context())
		if err != nil {
			logger.Error("fetching countries", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch countries")
			return
		}

		features := make([]CountryFeature, 0, len(records))
		for _, c := range records {
			features = append(features, CountryFeature{
				ID: c.IsoCode,
				Properties: CountryProperties{
					Name:    c.CommonName,
					Capital: c.Capital,
					PopEst:  c.Population,
					Area:    c.Area,
					Flag:    c.FlagURL,
					LatLng:  c.LatLng,
					Region:  c.Region,
				},
			})
		}
		writeJSON(w, http.StatusOK, features)
	}
}

func handleCountriesEnriched(logger *slog.Logger, source CountrySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := source.Countries(r.Context())
		if err != nil {
			logger.Error("fetching countries", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch countries")
			return
		}

		out := make([]EnrichedCountry, 0, len(records))
		for _, c := range records {
			out = append(out, EnrichedCountry{
				CommonName:         c.CommonName,
				OfficialName:       c.OfficialName,
				Capital:            c.Capital,
				Region:             c.Region,
				Population:         c.Population,
				Area:               c.Area,
				Souvenirs:          c.Souvenirs,
				TraditionalCuisine: c.TraditionalCuisine,
				Flag:               c.FlagURL,
				IsoCode:            c.IsoCode,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
