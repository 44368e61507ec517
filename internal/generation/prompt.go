package generation

import (
	"fmt"
	"strings"
	"text/template"
)

// PromptData holds the child's selections and recent history used to fill
// the activity prompt.
type PromptData struct {
	Category        string
	DurationMinutes int
	Materials       []string
	Objectives      []string
	RecentTitles    []string
}

// MinMaterialsCount is the number of selected materials the activity must
// actually use: all but one, so the model has a little freedom.
func (d PromptData) MinMaterialsCount() int {
	if len(d.Materials) == 0 {
		return 0
	}
	return len(d.Materials) - 1
}

// MaterialsList renders the materials as a comma-separated list
func (d PromptData) MaterialsList() string {
	return strings.Join(d.Materials, ", ")
}

// ObjectivesList renders the objectives as a comma-separated list
func (d PromptData) ObjectivesList() string {
	return strings.Join(d.Objectives, ", ")
}

// RecentSummary renders recent activity titles as a numbered list on one
// line, so the model can avoid repeating them.
func (d PromptData) RecentSummary() string {
	if len(d.RecentTitles) == 0 {
		return "No recent activities"
	}

	summaries := make([]string, 0, len(d.RecentTitles))
	for i, title := range d.RecentTitles {
		summaries = append(summaries, fmt.Sprintf("%d. %s", i+1, title))
	}
	return strings.Join(summaries, "; ")
}

const activityPromptTemplate = `System Role: You are an expert children's activity coordinator at a space-themed summer academy
Target Audience: 8-year-old children with developing fine motor skills and creativity
Confidence Level: You must have 95 percent confidence this activity is safe and appropriate

ACTIVITY REQUIREMENTS:
- Create a fun {{.Category}} activity that takes approximately {{.DurationMinutes}} minutes
- Use at least {{.MinMaterialsCount}} of these available materials: {{.MaterialsList}}
- The activity should help develop: {{.ObjectivesList}}
- Incorporate a galactic space academy theme naturally into the activity

OUTPUT FORMAT:
- Provide an exciting space-themed title
- Give a brief description of what the child will create and why it's cool
- Break down into clear, numbered steps using simple 8-year-old friendly language
- Suggest rough time allocation for each major step
- Include positive, encouraging language throughout

SAFETY AND QUALITY:
- Ensure all steps are safe for 8-year-olds working with the specified materials
- Verify fine motor skills required match 8-year-old capabilities
- Child should feel proud and accomplished when finished

UNIQUENESS REQUIREMENTS:
- Do NOT create activities similar to these recent activities: {{.RecentSummary}}
- Make this activity distinctly different in approach, final product, and techniques used

Please generate a complete activity following all the above requirements.`

var promptTmpl = template.Must(template.New("activity_prompt").Parse(activityPromptTemplate))

// BuildPrompt renders the full generation prompt for the given selections
func BuildPrompt(data PromptData) (string, error) {
	var b strings.Builder
	if err := promptTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return b.String(), nil
}
