// internal/agents/weather/models.go
package weather

type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"displayName"`
}

type Forecast struct {
	City        string   `json:"city"`
	Location    Location `json:"location"`
	PeriodName  string   `json:"periodName"`
	Description string   `json:"description"`
}

// geocodeResult is one entry of a Nominatim search response.
// Coordinates arrive as strings.
type geocodeResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type pointsResponse struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Periods []struct {
			Name             string `json:"name"`
			ShortForecast    string `json:"shortForecast"`
			DetailedForecast string `json:"detailedForecast"`
		} `json:"periods"`
	} `json:"properties"`
}
