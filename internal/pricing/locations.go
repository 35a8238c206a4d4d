package pricing

import "fmt"

// Charter locations offered on the create form. The artwork prompt is built
// from the location alone, so the set is closed.
var locations = []string{
	"Antibes, France",
	"Monaco Harbor",
	"Amalfi Coast, Italy",
	"Portofino, Italy",
	"Santorini, Greece",
	"Mykonos, Greece",
	"Ibiza, Spain",
	"Mallorca, Spain",
	"Nassau, Bahamas",
	"St. Barts, Caribbean",
	"Turks and Caicos",
	"British Virgin Islands",
	"Dubai Marina, UAE",
	"Maldives",
	"Seychelles",
	"Phuket, Thailand",
	"Sydney Harbor, Australia",
	"French Riviera",
	"Croatian Coast",
	"Turkish Riviera",
}

// Locations returns the supported charter locations.
func Locations() []string {
	out := make([]string, len(locations))
	copy(out, locations)
	return out
}

// ValidLocation reports whether loc is one of the supported locations.
func ValidLocation(loc string) bool {
	for _, l := range locations {
		if l == loc {
			return true
		}
	}
	return false
}

// Prompt builds the generation prompt for a charter location. The template is
// fixed so the same location always yields the same prompt.
func Prompt(location string) string {
	return fmt.Sprintf("Dramatic oil painting of luxury yacht at golden hour sunset in %s, "+
		"impressionist style like Turner, warm golden tones, captain on flybridge, "+
		"sparkling turquoise water, distant coastline with villas, 2x3 aspect ratio, "+
		"masterpiece quality, gallery wall art", location)
}
