package domain

// Mood is an optional emotional tag attached to a thought.
type Mood string

const (
	MoodHappy         Mood = "Happy"
	MoodSad           Mood = "Sad"
	MoodContemplative Mood = "Contemplative"
	MoodAnxious       Mood = "Anxious"
	MoodGrateful      Mood = "Grateful"
	MoodHopeful       Mood = "Hopeful"
	MoodReflective    Mood = "Reflective"
	MoodCalm          Mood = "Calm"
	MoodExcited       Mood = "Excited"
	MoodPeaceful      Mood = "Peaceful"
)

// moodFilterAll and moodFilterNone are filter sentinels, not storable moods.
const (
	moodFilterAll  = "All"
	moodFilterNone = "None"
)

var knownMoods = map[Mood]bool{
	MoodHappy:         true,
	MoodSad:           true,
	MoodContemplative: true,
	MoodAnxious:       true,
	MoodGrateful:      true,
	MoodHopeful:       true,
	MoodReflective:    true,
	MoodCalm:          true,
	MoodExcited:       true,
	MoodPeaceful:      true,
}

// IsKnownMood reports whether s is one of the recognized mood values.
func IsKnownMood(s string) bool {
	return knownMoods[Mood(s)]
}

type moodFilterKind int

const (
	filterAnyMood moodFilterKind = iota
	filterAbsentMood
	filterExactMood
)

// MoodFilter describes how a listing narrows results by mood.
// The zero value matches every entry.
type MoodFilter struct {
	kind moodFilterKind
	mood Mood
}

// MoodFilterAny matches all entries regardless of mood.
func MoodFilterAny() MoodFilter { return MoodFilter{kind: filterAnyMood} }

// MoodFilterAbsent matches only entries with no mood set.
func MoodFilterAbsent() MoodFilter { return MoodFilter{kind: filterAbsentMood} }

// MoodFilterFor matches entries tagged with exactly m.
func MoodFilterFor(m Mood) MoodFilter { return MoodFilter{kind: filterExactMood, mood: m} }

// ParseMoodFilter maps the raw query parameter to a filter.
// "" and "All" mean no filtering; "None" means entries without a mood;
// a recognized mood filters to exact match. Anything else is treated
// as no filter rather than an error.
func ParseMoodFilter(param string) MoodFilter {
	switch {
	case param == "" || param == moodFilterAll:
		return MoodFilterAny()
	case param == moodFilterNone:
		return MoodFilterAbsent()
	case IsKnownMood(param):
		return MoodFilterFor(Mood(param))
	default:
		return MoodFilterAny()
	}
}

// IsAny reports whether the filter matches every entry.
func (f MoodFilter) IsAny() bool { return f.kind == filterAnyMood }

// IsAbsent reports whether the filter selects entries with no mood.
func (f MoodFilter) IsAbsent() bool { return f.kind == filterAbsentMood }

// Exact returns the mood for an exact-match filter.
func (f MoodFilter) Exact() (Mood, bool) {
	if f.kind != filterExactMood {
		return "", false
	}
	return f.mood, true
}
