package yelp

import (
	"sort"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// notAvailable is the uniform placeholder for any missing business field.
const notAvailable = "N/A"

// defaultPhoneRegion resolves phone numbers that arrive without a country
// prefix.
const defaultPhoneRegion = "US"

// Normalize flattens the nested entities[].businesses[] response into a
// single ordered business list. The entity grouping carries no meaning for
// display and is discarded. The upstream response omits fields unpredictably,
// so it is walked as a loosely-typed tree through small accessors instead of
// a rigid schema.
func Normalize(raw map[string]any, query string) SearchResult {
	aiText, _ := getMap(raw, "response")["text"].(string)

	result := SearchResult{
		ChatID:         raw["chat_id"],
		Query:          query,
		AIResponseText: aiText,
		Businesses:     []Business{},
	}

	for _, e := range getList(raw, "entities") {
		entity, ok := e.(map[string]any)
		if !ok {
			continue
		}
		for _, b := range getList(entity, "businesses") {
			biz, ok := b.(map[string]any)
			if !ok {
				continue
			}
			result.Businesses = append(result.Businesses, normalizeBusiness(biz))
		}
	}

	sortBusinesses(result.Businesses)
	return result
}

func normalizeBusiness(biz map[string]any) Business {
	loc := getMap(biz, "location")
	coords := getMap(biz, "coordinates")
	summaries := getMap(biz, "summaries")
	contextual := getMap(biz, "contextual_info")
	openings := getList(getMap(biz, "reservation_availability"), "openings")

	shortSummary := stringOr(summaries, "short")
	if shortSummary == notAvailable {
		shortSummary = stringOr(contextual, "summary")
	}

	phone := stringOr(biz, "phone")
	displayPhone := notAvailable
	if phone != notAvailable {
		displayPhone = formatDisplayPhone(phone)
	}

	return Business{
		ID:                  stringOr(biz, "id"),
		Name:                stringOr(biz, "name"),
		Address:             resolveAddress(loc),
		YelpURL:             stringOr(biz, "url"),
		Rating:              valueOr(biz, "rating"),
		ReviewCount:         valueOr(biz, "review_count"),
		Price:               stringOr(biz, "price"),
		Latitude:            valueOr(coords, "latitude"),
		Longitude:           valueOr(coords, "longitude"),
		ShortSummary:        shortSummary,
		BusinessHours:       resolveBusinessHours(getList(contextual, "business_hours")),
		PhotoURL:            resolvePhotoURL(getList(contextual, "photos")),
		ReservationOpenings: resolveReservationOpenings(openings),
		Phone:               phone,
		DisplayPhone:        displayPhone,
	}
}

// resolveAddress prefers the pre-formatted address and falls back to joining
// the individual parts, skipping empty ones.
func resolveAddress(loc map[string]any) string {
	if addr, ok := loc["formatted_address"].(string); ok && addr != "" {
		return addr
	}

	parts := make([]string, 0, 7)
	for _, key := range []string{"address1", "address2", "address3", "city", "state", "zip_code", "country"} {
		if s, ok := loc[key].(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return notAvailable
	}
	return strings.Join(parts, ", ")
}

func resolvePhotoURL(photos []any) string {
	if len(photos) == 0 {
		return notAvailable
	}
	first, ok := photos[0].(map[string]any)
	if !ok {
		return notAvailable
	}
	return stringOr(first, "original_url")
}

// resolveBusinessHours joins each open/close pair as "<open> to <close>",
// skipping slots missing either bound. Days without a valid slot still appear
// with an empty list.
func resolveBusinessHours(raw []any) []BusinessHours {
	hours := make([]BusinessHours, 0, len(raw))
	for _, h := range raw {
		day, ok := h.(map[string]any)
		if !ok {
			continue
		}

		slots := make([]string, 0)
		for _, s := range getList(day, "business_hours") {
			slot, ok := s.(map[string]any)
			if !ok {
				continue
			}
			openTime, _ := slot["open_time"].(string)
			closeTime, _ := slot["close_time"].(string)
			if openTime != "" && closeTime != "" {
				slots = append(slots, openTime+" to "+closeTime)
			}
		}

		hours = append(hours, BusinessHours{
			DayOfWeek: valueOr(day, "day_of_week"),
			Hours:     slots,
		})
	}
	return hours
}

// resolveReservationOpenings preserves each date's slot list verbatim,
// defaulting missing dates and times and keeping absent seating areas as an
// empty list.
func resolveReservationOpenings(raw []any) []ReservationOpening {
	openings := make([]ReservationOpening, 0, len(raw))
	for _, o := range raw {
		opening, ok := o.(map[string]any)
		if !ok {
			continue
		}

		slots := make([]ReservationSlot, 0)
		for _, s := range getList(opening, "slots") {
			slot, ok := s.(map[string]any)
			if !ok {
				continue
			}
			areas := getList(slot, "seating_areas")
			if areas == nil {
				areas = []any{}
			}
			slots = append(slots, ReservationSlot{
				Time:         valueOr(slot, "time"),
				SeatingAreas: areas,
			})
		}

		openings = append(openings, ReservationOpening{
			Date:  valueOr(opening, "date"),
			Slots: slots,
		})
	}
	return openings
}

// formatDisplayPhone renders a raw phone number for display. Values that do
// not parse as a valid number stay verbatim so the upstream value is never
// lost.
func formatDisplayPhone(raw string) string {
	num, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}

// sortBusinesses orders by rating then review count, both descending, with
// absent values ranked below any present value. Ties keep extraction order.
func sortBusinesses(businesses []Business) {
	sort.SliceStable(businesses, func(i, j int) bool {
		ri, rj := sortValue(businesses[i].Rating), sortValue(businesses[j].Rating)
		if ri != rj {
			return ri > rj
		}
		return sortValue(businesses[i].ReviewCount) > sortValue(businesses[j].ReviewCount)
	})
}

// sortValue coerces a rating or review count to a sortable number, treating
// anything non-numeric as -1.
func sortValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return -1
	}
}

func getMap(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func getList(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}

// valueOr returns the value under key when present and non-nil, in all other
// cases the "N/A" sentinel. Zero values survive; only absence is defaulted.
func valueOr(m map[string]any, key string) any {
	if v, ok := m[key]; ok && v != nil {
		return v
	}
	return notAvailable
}

// stringOr returns the string under key, or the "N/A" sentinel when the value
// is absent, empty, or not a string.
func stringOr(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return notAvailable
}
