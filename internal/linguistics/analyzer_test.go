package linguistics

import (
	"reflect"
	"testing"
)

func TestQuestionDetection(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"How are you today?", true},
		{"what do you mean by that", true},
		{"I am fine.", false},
		{"Tell me about your day.", false},
		{"Where were you", true},
	}
	for _, tc := range cases {
		if got := Analyze(tc.text).IsQuestion; got != tc.want {
			t.Errorf("IsQuestion(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestEmotionSignal(t *testing.T) {
	if !Analyze("I feel really anxious about this").ExpressesEmotion {
		t.Error("emotion words not detected")
	}
	if Analyze("The server restarted at noon").ExpressesEmotion {
		t.Error("false emotion signal on neutral text")
	}
}

func TestSelfReferences(t *testing.T) {
	f := Analyze("I told myself that my plan would work")
	if f.SelfReferences != 3 {
		t.Errorf("self references = %d, want 3", f.SelfReferences)
	}
}

func TestCountsAndComplexity(t *testing.T) {
	f := Analyze("The cat sat. The cat slept. Why?")
	if f.WordCount != 7 {
		t.Errorf("word count = %d, want 7", f.WordCount)
	}
	if f.SentenceCount != 3 {
		t.Errorf("sentence count = %d, want 3", f.SentenceCount)
	}
	if f.Complexity <= 0 || f.Complexity > 1 {
		t.Errorf("complexity out of range: %v", f.Complexity)
	}

	empty := Analyze("   ")
	if empty.WordCount != 0 || empty.SentenceCount != 0 || empty.Complexity != 0 {
		t.Errorf("empty input produced %+v", empty)
	}
}

func TestTopicsExcludeStopwords(t *testing.T) {
	f := Analyze("I am worried about the weather and the weather forecast")
	want := []string{"worried", "weather", "forecast"}
	if !reflect.DeepEqual(f.Topics, want) {
		t.Errorf("topics = %v, want %v", f.Topics, want)
	}
}

func TestIntentSignals(t *testing.T) {
	f := Analyze("Can you help me? I feel lost, thanks")
	has := map[string]bool{}
	for _, s := range f.IntentSignals {
		has[s] = true
	}
	for _, want := range []string{"requesting_help", "expressing_emotion", "thanking"} {
		if !has[want] {
			t.Errorf("missing intent %q in %v", want, f.IntentSignals)
		}
	}
}

func TestHedgeDensity(t *testing.T) {
	hedged := Analyze("maybe it could possibly work, I think")
	plain := Analyze("it works")
	if hedged.HedgeDensity <= plain.HedgeDensity {
		t.Errorf("hedge density %v not above %v", hedged.HedgeDensity, plain.HedgeDensity)
	}
}

func TestTopicOverlap(t *testing.T) {
	n := TopicOverlap(
		"Tell me about the weather in spring",
		"Spring weather is mild and wet",
	)
	if n != 2 {
		t.Errorf("overlap = %d, want 2 (weather, spring)", n)
	}
	if TopicOverlap("hello there", "completely unrelated subject") != 0 {
		t.Error("nonzero overlap for disjoint topics")
	}
}

func TestAnalyzeFocus(t *testing.T) {
	report := AnalyzeFocus([]string{
		"thinking about memory and attention",
		"memory shapes attention",
		"memory fades",
	}, 2)

	if report.AttentionBreadth < 3 {
		t.Errorf("breadth = %d, want >= 3", report.AttentionBreadth)
	}
	if len(report.KeyConcepts) != 2 {
		t.Fatalf("got %d concepts, want 2", len(report.KeyConcepts))
	}
	if report.KeyConcepts[0].Concept != "memory" || report.KeyConcepts[0].Count != 3 {
		t.Errorf("top concept = %+v, want memory x3", report.KeyConcepts[0])
	}
	if report.KeyConcepts[1].Concept != "attention" {
		t.Errorf("second concept = %+v, want attention", report.KeyConcepts[1])
	}
}
