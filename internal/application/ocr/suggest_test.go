package ocr

import "testing"

func TestSuggestFiltersAndRanks(t *testing.T) {
	cands := []Candidate{
		{Token: "MILK", Confidence: 0.95},
		{Token: "500ml", Confidence: 0.80},
		{Token: "noise!", Confidence: 0.99}, // 記号入りは捨てる
		{Token: "x", Confidence: 0.90},      // 1 文字は捨てる
		{Token: "faint", Confidence: 0.30},  // 低信頼は捨てる
		{Token: "milk", Confidence: 0.70},   // 大文字小文字違いの重複
		{Token: "Fresh", Confidence: 0.85},
	}

	got := Suggest(cands, DefaultMinConfidence)
	want := []string{"MILK", "Fresh", "500ml"}
	if len(got) != len(want) {
		t.Fatalf("Suggest = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Suggest = %v, want %v", got, want)
		}
	}
}

func TestSuggestCapsAtFive(t *testing.T) {
	cands := []Candidate{
		{Token: "aa", Confidence: 0.9},
		{Token: "bb", Confidence: 0.9},
		{Token: "cc", Confidence: 0.9},
		{Token: "dd", Confidence: 0.9},
		{Token: "ee", Confidence: 0.9},
		{Token: "ff", Confidence: 0.9},
		{Token: "gg", Confidence: 0.9},
	}
	if got := Suggest(cands, 0); len(got) != MaxSuggestions {
		t.Errorf("len = %d, want %d", len(got), MaxSuggestions)
	}
}

func TestSuggestEmptyInput(t *testing.T) {
	if got := Suggest(nil, DefaultMinConfidence); len(got) != 0 {
		t.Errorf("Suggest(nil) = %v", got)
	}
}
