package venue

type Venue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
}

type Table struct {
	ID       string `json:"id"`
	VenueID  string `json:"venueId"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}
