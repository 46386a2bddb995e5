package gemini

import (
	"fmt"
	"strings"
)

// ModerationInstruction defines the screening prompt sent with every uploaded
// image before any paid search call is made. The model must answer with a
// bare JSON object matching the verdict shape; the gate parses that answer
// and fails closed on anything else.
const ModerationInstruction = `You screen images for a food and venue discovery service. Only food, drink, restaurant, venue, and hospitality discovery is in scope.
Look at the attached image together with the user's question and decide whether it may be used to search for places to eat, drink, or gather.
Respond with ONLY a JSON object in exactly this shape:
{"allowed": true or false, "reason": "one short sentence", "category": "one of: food_or_venue, face_only, adult_or_nudity, violence_or_gore, drugs_or_weapons, hate_or_extremism, unrelated, uncertain"}
Rules:
- Allow images showing food, drinks, menus, restaurants, cafes, bars, venues, storefronts, or event spaces.
- Set category to "face_only" and allowed to false when the image is primarily a human face with no food or venue context.
- Set allowed to false for adult or sexual content, graphic violence, drugs, weapons, or hateful imagery, with the matching category.
- Set category to "unrelated" and allowed to false for images with no connection to food or venues.
- When you cannot tell, set allowed to false and category to "uncertain".
- No markdown, no code fences, no text outside the JSON object.`

// searchInstructionRules is the fixed rule block of a synthesis instruction.
// The two format parameters name the content source the model should describe,
// "image content" or "image caption".
const searchInstructionRules = `Use the %s and the user's question to craft a clear, specific, natural first-person request.
Ask Yelp to return many relevant options and prioritize higher-rated, more popular places first.
Write one well-structured sentence describing what to find, where, and when.
Rules:
- Make the description from the %s as specific as possible.
- Integrate the user's question naturally.
- Mention location, date, and time explicitly.
- Request multiple options ordered by rating and popularity.
- No explanations, no meta text, no references to prompts, APIs, or images.
- Output only the final query sentence.
- Keep it under 900 characters.`

const (
	sourceImageContent = "image content"
	sourceImageCaption = "image caption"
)

// buildSearchInstruction renders the labeled context lines followed by the
// rule block. The latitude/longitude lines are omitted entirely when both
// coordinates are empty.
func buildSearchInstruction(source string, sc SearchContext) string {
	var sb strings.Builder

	sb.WriteString("Create a single natural-language Yelp search query.\n")
	fmt.Fprintf(&sb, "Location: %s\n", sc.Location)
	if sc.Latitude != "" || sc.Longitude != "" {
		fmt.Fprintf(&sb, "Latitude: %s\n", sc.Latitude)
		fmt.Fprintf(&sb, "Longitude: %s\n", sc.Longitude)
	}
	fmt.Fprintf(&sb, "Date: %s\n", sc.Date)
	fmt.Fprintf(&sb, "Time: %s\n", sc.Time)
	fmt.Fprintf(&sb, searchInstructionRules, source, source)

	return sb.String()
}
