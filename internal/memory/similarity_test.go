package memory

import "testing"

func TestKeywordSimilarityExactBeatsPartial(t *testing.T) {
	exact := keywordSimilarity([]string{"weather", "rain"}, "weather_rain", "talked about weather and rain")
	partial := keywordSimilarity([]string{"weather"}, "weathering", "stone weathering patterns")
	if exact <= partial {
		t.Errorf("exact %v not above partial %v", exact, partial)
	}
}

func TestKeywordSimilarityBounds(t *testing.T) {
	if got := keywordSimilarity(nil, "anything", "at all"); got != 0 {
		t.Errorf("no keywords scored %v", got)
	}
	if got := keywordSimilarity([]string{"zebra"}, "weather", "rain patterns"); got != 0 {
		t.Errorf("disjoint keywords scored %v", got)
	}
	got := keywordSimilarity([]string{"rain"}, "rain", "")
	if got <= 0 || got > 1 {
		t.Errorf("perfect single-keyword match scored %v", got)
	}
}

func TestSortMatchResults(t *testing.T) {
	matches := []MatchResult{
		{Concept: &Concept{Name: "low"}, Score: 0.1},
		{Concept: &Concept{Name: "high"}, Score: 0.9},
		{Concept: &Concept{Name: "mid"}, Score: 0.5},
	}
	sortMatchResults(matches)
	if matches[0].Concept.Name != "high" || matches[2].Concept.Name != "low" {
		t.Errorf("unexpected order: %v %v %v",
			matches[0].Concept.Name, matches[1].Concept.Name, matches[2].Concept.Name)
	}
}
