package yelp

// Business is one normalized entry of a search result. Scalar fields hold the
// upstream value when present and the "N/A" sentinel when absent, never null;
// display code depends on that. Rating, review count and coordinates keep
// their numeric type when present, so zero survives as a value.
type Business struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Address             string               `json:"address"`
	YelpURL             string               `json:"yelp_url"`
	Rating              any                  `json:"rating"`
	ReviewCount         any                  `json:"review_count"`
	Price               string               `json:"price"`
	Latitude            any                  `json:"latitude"`
	Longitude           any                  `json:"longitude"`
	ShortSummary        string               `json:"short_summary"`
	BusinessHours       []BusinessHours      `json:"business_hours"`
	PhotoURL            string               `json:"photo_url"`
	ReservationOpenings []ReservationOpening `json:"reservation_openings"`
	Phone               string               `json:"phone"`
	DisplayPhone        string               `json:"display_phone"`
}

// BusinessHours lists the opening slots reported for one day of the week.
// Days without a single valid slot keep an empty list rather than being
// dropped.
type BusinessHours struct {
	DayOfWeek any      `json:"day_of_week"`
	Hours     []string `json:"hours"`
}

// ReservationOpening groups the reservation slots available on one date.
type ReservationOpening struct {
	Date  any               `json:"date"`
	Slots []ReservationSlot `json:"slots"`
}

// ReservationSlot is a bookable time with its seating areas, preserved
// verbatim from the upstream response.
type ReservationSlot struct {
	Time         any   `json:"time"`
	SeatingAreas []any `json:"seating_areas"`
}

// SearchResult is the flat, UI-ready reply for one search request.
type SearchResult struct {
	ChatID         any        `json:"chat_id"`
	Query          string     `json:"query"`
	AIResponseText string     `json:"ai_response_text"`
	Businesses     []Business `json:"businesses"`
}
