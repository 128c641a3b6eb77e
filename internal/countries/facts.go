package countries

import (
	"encoding/json"
	"fmt"
	"os"
)

// TravelFacts holds harvested enrichment for one country. The harvesting
// job that produces the file is a separate offline process; this package
// only consumes its output.
type TravelFacts struct {
	CommonName         string `json:"common_name"`
	Souvenirs          string `json:"souvenirs"`
	TraditionalCuisine string `json:"traditional_cuisine"`
}

// LoadTravelFacts reads a harvested dataset file and indexes it by common
// name. A missing path is not an error: enrichment is optional and records
// fall back to "N/A".
func LoadTravelFacts(path string) (map[string]TravelFacts, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading travel facts: %w", err)
	}

	var entries []TravelFacts
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing travel facts: %w", err)
	}

	facts := make(map[string]TravelFacts, len(entries))
	for _, e := range entries {
		if e.CommonName != "" {
			facts[e.CommonName] = e
		}
	}
	return facts, nil
}
