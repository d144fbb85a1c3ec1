package safety

// Rating holds safety scores for one rated area near the destination.
// Scores run 0 (safest) to 100.
type Rating struct {
	Name         string
	Overall      int
	PhysicalHarm int
	Theft        int
	Women        int
}

// ratingsResponse is the upstream safety-rated-locations payload.
type ratingsResponse struct {
	Data []struct {
		Name         string `json:"name"`
		SafetyScores struct {
			Overall      int `json:"overall"`
			PhysicalHarm int `json:"physicalHarm"`
			Theft        int `json:"theft"`
			Women        int `json:"women"`
		} `json:"safetyScores"`
	} `json:"data"`
}

// tokenResponse is the OAuth client-credentials exchange payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}
