package planner

// Trip describes what the model is asked to plan.
type Trip struct {
	Destination   string
	Days          int
	KidAges       []int
	WeatherDigest string
	SafetyDigest  string
}

// Itinerary is a day-by-day activity plan.
type Itinerary struct {
	Days []ItineraryDay `json:"days"`
}

// ItineraryDay groups activities under one trip day.
type ItineraryDay struct {
	Day        int        `json:"day"`
	Theme      string     `json:"theme"`
	Activities []Activity `json:"activities"`
}

// Activity is one suggested activity.
type Activity struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Indoor      bool   `json:"indoor"`
	Free        bool   `json:"free"`
	MinAge      int    `json:"minAge"`
}

// PackingList is a family packing checklist.
type PackingList struct {
	Items []PackingItem `json:"items"`
}

// PackingItem is one checklist entry.
type PackingItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}
