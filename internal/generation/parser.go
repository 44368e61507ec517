package generation

import (
	"regexp"
	"strings"

	"craftacademy/internal/models"
)

var stepLine = regexp.MustCompile(`^\s*\d+\.\s*(.*)`)

// ParseActivity structures the model's free-text output. The first non-blank
// line is the title, everything between the title and the first numbered line
// is the description, and every "N. text" line is a step. The raw text is
// kept so nothing is lost if the model deviates from the format.
func ParseActivity(content string) models.GeneratedActivity {
	activity := models.GeneratedActivity{RawContent: content}
	lines := strings.Split(content, "\n")

	// Title: first non-blank line
	titleIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			activity.Title = strings.TrimSpace(line)
			titleIdx = i
			break
		}
	}

	// Description: lines after the title up to the first numbered step
	if titleIdx >= 0 {
		var descParts []string
		for _, line := range lines[titleIdx+1:] {
			if stepLine.MatchString(line) {
				break
			}
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				descParts = append(descParts, trimmed)
			}
		}
		activity.Description = strings.Join(descParts, " ")
	}

	// Steps: every numbered line anywhere in the content
	for _, line := range lines {
		if m := stepLine.FindStringSubmatch(line); m != nil {
			if step := strings.TrimSpace(m[1]); step != "" {
				activity.Steps = append(activity.Steps, step)
			}
		}
	}

	return activity
}
