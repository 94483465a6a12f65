package evaluation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"airlinesim"
)

const (
	defaultStructuredScore = 50
	defaultTextScore       = 75
	maxFeedbackText        = 500
)

// Assessment is the part of the feedback read out of a model response.
type Assessment struct {
	Score            float64
	FeedbackText     string
	Strengths        []string
	ImprovementAreas []string
	Source           string
}

type structuredResponse struct {
	Score            *float64 `json:"score"`
	FeedbackText     *string  `json:"feedback_text"`
	Strengths        []string `json:"strengths"`
	ImprovementAreas []string `json:"improvement_areas"`
}

// ParseStructured reads the JSON object spanning the first '{' to the last '}' of the response.
// Missing fields get defaults; anything that is not such an object is ErrMalformedResponse.
func ParseStructured(text string) (Assessment, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Assessment{}, fmt.Errorf("%w: no JSON object in response", airlinesim.ErrMalformedResponse)
	}

	var r structuredResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &r); err != nil {
		return Assessment{}, fmt.Errorf("%w: %v", airlinesim.ErrMalformedResponse, err)
	}

	a := Assessment{
		Score:            defaultStructuredScore,
		FeedbackText:     "No detailed feedback available.",
		Strengths:        r.Strengths,
		ImprovementAreas: r.ImprovementAreas,
		Source:           airlinesim.SourceStructured,
	}
	if r.Score != nil {
		a.Score = *r.Score
	}
	a.Score = airlinesim.Clamp(a.Score, 0, 100)
	if r.FeedbackText != nil {
		a.FeedbackText = *r.FeedbackText
	}
	if len(a.Strengths) == 0 {
		a.Strengths = []string{"Strategic thinking"}
	}
	if len(a.ImprovementAreas) == 0 {
		a.ImprovementAreas = []string{"Resource planning"}
	}
	return a, nil
}

var scoreRe = regexp.MustCompile(`(?i)score[:\s]*(\d+)`)

type keywordTag struct {
	tag   string
	match func(lower string) bool
}

func anyOf(words ...string) func(string) bool {
	return func(s string) bool {
		for _, w := range words {
			if strings.Contains(s, w) {
				return true
			}
		}
		return false
	}
}

var (
	strengthTags = []keywordTag{
		{"Strategic execution", anyOf("good", "strong")},
		{"Plan coherence", anyOf("coherent")},
		{"Realistic planning", anyOf("realistic")},
	}
	improvementTags = []keywordTag{
		{"Strategic refinement", anyOf("improve")},
		{"Budget management", func(s string) bool {
			return strings.Contains(s, "budget") && anyOf("over", "exceed")(s)
		}},
		{"Risk assessment", anyOf("risk")},
	}
)

// ParseText scans free text for a score token and keyword-triggered tags. It never fails.
func ParseText(text string) Assessment {
	score := float64(defaultTextScore)
	if m := scoreRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			score = float64(n)
		}
	}

	lower := strings.ToLower(text)
	a := Assessment{
		Score:            airlinesim.Clamp(score, 0, 100),
		FeedbackText:     truncate(text, maxFeedbackText),
		Strengths:        tags(lower, strengthTags, "Strategic thinking"),
		ImprovementAreas: tags(lower, improvementTags, "Implementation planning"),
		Source:           airlinesim.SourceText,
	}
	return a
}

func tags(lower string, candidates []keywordTag, fallback string) []string {
	var out []string
	for _, c := range candidates {
		if c.match(lower) {
			out = append(out, c.tag)
		}
	}
	if len(out) == 0 {
		return []string{fallback}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
