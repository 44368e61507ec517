package generation

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	data := PromptData{
		Category:        "arts_and_crafts",
		DurationMinutes: 30,
		Materials:       []string{"paper", "glue", "scissors", "markers"},
		Objectives:      []string{"creativity", "fine motor skills"},
		RecentTitles:    []string{"Galactic Rocket Builder", "Star Painter"},
	}

	prompt, err := BuildPrompt(data)
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}

	wantFragments := []string{
		"Create a fun arts_and_crafts activity that takes approximately 30 minutes",
		"Use at least 3 of these available materials: paper, glue, scissors, markers",
		"The activity should help develop: creativity, fine motor skills",
		"Do NOT create activities similar to these recent activities: 1. Galactic Rocket Builder; 2. Star Painter",
	}
	for _, want := range wantFragments {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing fragment %q", want)
		}
	}
}

func TestBuildPromptNoRecentActivities(t *testing.T) {
	data := PromptData{
		Category:        "science",
		DurationMinutes: 15,
		Materials:       []string{"baking soda", "vinegar", "cup"},
		Objectives:      []string{"problem solving"},
	}

	prompt, err := BuildPrompt(data)
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}

	if !strings.Contains(prompt, "No recent activities") {
		t.Error("prompt should mention 'No recent activities' when history is empty")
	}
}

func TestMinMaterialsCount(t *testing.T) {
	tests := []struct {
		name      string
		materials []string
		want      int
	}{
		{"four materials", []string{"a", "b", "c", "d"}, 3},
		{"one material", []string{"a"}, 0},
		{"no materials", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := PromptData{Materials: tt.materials}
			if got := d.MinMaterialsCount(); got != tt.want {
				t.Errorf("MinMaterialsCount() = %d, want %d", got, tt.want)
			}
		})
	}
}
