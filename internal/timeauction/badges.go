package timeauction

type BadgeTier struct {
	Type       string
	Hours      float64
	MinQuality float64
}

var BadgeTiers = []BadgeTier{
	{Type: "helper", Hours: 10, MinQuality: 3.0},
	{Type: "mentor", Hours: 25, MinQuality: 3.5},
	{Type: "expert", Hours: 50, MinQuality: 4.0},
	{Type: "champion", Hours: 100, MinQuality: 4.5},
	{Type: "legend", Hours: 200, MinQuality: 4.8},
}

var BadgeLevels = []string{"bronze", "silver", "gold", "platinum", "diamond"}

const DefaultQualityScore = 3.0

// BadgeLevelIndex maps total hours onto a level within a tier:
// one multiple of the tier threshold is bronze, five or more is diamond.
func BadgeLevelIndex(totalHours, tierHours float64) int {
	if tierHours <= 0 {
		return 0
	}
	idx := int(totalHours/tierHours) - 1
	if idx < 0 {
		return 0
	}
	if idx > len(BadgeLevels)-1 {
		return len(BadgeLevels) - 1
	}
	return idx
}

// Qualifies: порог часов и качества тира пройден.
func (t BadgeTier) Qualifies(totalHours, quality float64) bool {
	return totalHours >= t.Hours && quality >= t.MinQuality
}
