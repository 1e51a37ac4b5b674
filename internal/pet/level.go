package pet

// levelThresholds[i]: минимальный опыт для уровня i+1.
var levelThresholds = []int{0, 100, 250, 500, 1000, 1750, 2750, 4000, 5500}

const (
	plateauStart = 7500
	plateauStep  = 1000
)

// LevelFor returns the pet level for a total experience amount.
// Levels 1-9 follow levelThresholds; from plateauStart on every
// plateauStep adds one level on top of 9.
func LevelFor(exp int) int {
	if exp >= plateauStart {
		return 9 + (exp-plateauStart)/plateauStep
	}
	lvl := 1
	for i, t := range levelThresholds {
		if exp >= t {
			lvl = i + 1
		}
	}
	return lvl
}

var expRewards = map[string]int{
	"assignment_completion": 50,
	"perfect_score":         75,
	"streak_bonus":          25,
	"helping_others":        30,
	"daily_login":           10,
	"first_submission":      100,
	"improvement":           40,
	"participation":         20,
}

const defaultReward = 10

// ExpReward returns the base reward for an activity scaled by multiplier.
func ExpReward(activity string, multiplier float64) int {
	base, ok := expRewards[activity]
	if !ok {
		base = defaultReward
	}
	return int(float64(base) * multiplier)
}

func clampStat(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
