package gemini

import (
	"strings"
	"testing"
)

func TestBuildSearchInstructionContextLines(t *testing.T) {
	t.Parallel()

	sc := SearchContext{
		Location:  "College Park, Maryland",
		Latitude:  "38.9897",
		Longitude: "-76.9378",
		Date:      "12/11/2025",
		Time:      "8pm",
	}

	got := buildSearchInstruction(sourceImageContent, sc)

	if !strings.HasPrefix(got, "Create a single natural-language Yelp search query.\n") {
		t.Errorf("instruction does not start with the goal line: %q", got)
	}

	for _, line := range []string{
		"Location: College Park, Maryland\n",
		"Latitude: 38.9897\n",
		"Longitude: -76.9378\n",
		"Date: 12/11/2025\n",
		"Time: 8pm\n",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("instruction missing line %q", line)
		}
	}

	if !strings.Contains(got, "image content") {
		t.Errorf("image instruction should reference the image content: %q", got)
	}
}

func TestBuildSearchInstructionOmitsEmptyCoordinates(t *testing.T) {
	t.Parallel()

	sc := SearchContext{
		Location: "College Park, Maryland",
		Date:     "12/11/2025",
		Time:     "8pm",
	}

	got := buildSearchInstruction(sourceImageContent, sc)

	if strings.Contains(got, "Latitude:") {
		t.Errorf("instruction contains a Latitude line for empty coordinates: %q", got)
	}
	if strings.Contains(got, "Longitude:") {
		t.Errorf("instruction contains a Longitude line for empty coordinates: %q", got)
	}
}

func TestBuildSearchInstructionKeepsPartialCoordinates(t *testing.T) {
	t.Parallel()

	sc := SearchContext{
		Location: "College Park, Maryland",
		Latitude: "38.9897",
		Date:     "12/11/2025",
		Time:     "8pm",
	}

	got := buildSearchInstruction(sourceImageCaption, sc)

	if !strings.Contains(got, "Latitude: 38.9897\n") {
		t.Errorf("instruction missing latitude line: %q", got)
	}
	if !strings.Contains(got, "Longitude: \n") {
		t.Errorf("instruction missing longitude line for partial coordinates: %q", got)
	}
	if !strings.Contains(got, "image caption") {
		t.Errorf("caption instruction should reference the image caption: %q", got)
	}
}
