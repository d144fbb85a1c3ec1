package geocode

// Location is a geocoded place.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	Admin1    string  `json:"admin1,omitempty"`
	Timezone  string  `json:"timezone"`
}

// Label returns the place name with its region and country when known.
func (l *Location) Label() string {
	label := l.Name
	if l.Admin1 != "" && l.Admin1 != l.Name {
		label += ", " + l.Admin1
	}
	if l.Country != "" {
		label += ", " + l.Country
	}
	return label
}

// searchResponse is the geocoding search payload.
type searchResponse struct {
	Results []Location `json:"results"`
}
