package evaluation

import (
	"strings"
	"testing"

	"airlinesim"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructured(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Assessment
		wantErr bool
	}{
		{
			name: "bare object",
			text: `{"score": 88, "feedback_text": "Strong plan.", "strengths": ["Focus"], "improvement_areas": ["Cash buffer"]}`,
			want: Assessment{Score: 88, FeedbackText: "Strong plan.", Strengths: []string{"Focus"}, ImprovementAreas: []string{"Cash buffer"}},
		},
		{
			name: "object inside prose and fences",
			text: "Sure! Here is the evaluation:\n```json\n{\"score\": 64, \"feedback_text\": \"ok\", \"strategic_assessment\": {\"planning_quality\": 6}}\n```\nHope it helps.",
			want: Assessment{Score: 64, FeedbackText: "ok", Strengths: []string{"Strategic thinking"}, ImprovementAreas: []string{"Resource planning"}},
		},
		{
			name: "missing fields get defaults",
			text: `{}`,
			want: Assessment{Score: 50, FeedbackText: "No detailed feedback available.", Strengths: []string{"Strategic thinking"}, ImprovementAreas: []string{"Resource planning"}},
		},
		{
			name: "score is clamped",
			text: `{"score": 140, "feedback_text": "wow"}`,
			want: Assessment{Score: 100, FeedbackText: "wow", Strengths: []string{"Strategic thinking"}, ImprovementAreas: []string{"Resource planning"}},
		},
		{name: "no object", text: "Score: 80. Good work.", wantErr: true},
		{name: "broken object", text: `{"score": 80, "feedback_text": }`, wantErr: true},
		{name: "score of the wrong type", text: `{"score": "eighty"}`, wantErr: true},
		{name: "closing brace before opening", text: `} nope {`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStructured(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, airlinesim.ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			tt.want.Source = airlinesim.SourceStructured
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseText(t *testing.T) {
	tests := []struct {
		name             string
		text             string
		wantScore        float64
		wantStrengths    []string
		wantImprovements []string
	}{
		{
			name:             "score token and keywords",
			text:             "Score: 82. A strong, coherent plan, though the team should improve its risk controls.",
			wantScore:        82,
			wantStrengths:    []string{"Strategic execution", "Plan coherence"},
			wantImprovements: []string{"Strategic refinement", "Risk assessment"},
		},
		{
			name:             "budget overrun",
			text:             "The SCORE 40 reflects that spending will exceed the budget. Realistic goals though.",
			wantScore:        40,
			wantStrengths:    []string{"Realistic planning"},
			wantImprovements: []string{"Budget management"},
		},
		{
			name:             "nothing recognisable",
			text:             "The airline exists.",
			wantScore:        75,
			wantStrengths:    []string{"Strategic thinking"},
			wantImprovements: []string{"Implementation planning"},
		},
		{
			name:             "large score is clamped",
			text:             "score 250",
			wantScore:        100,
			wantStrengths:    []string{"Strategic thinking"},
			wantImprovements: []string{"Implementation planning"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseText(tt.text)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantStrengths, got.Strengths)
			assert.Equal(t, tt.wantImprovements, got.ImprovementAreas)
			assert.Equal(t, airlinesim.SourceText, got.Source)
			assert.Equal(t, tt.text, got.FeedbackText)
		})
	}
}

func TestParseText_TruncatesLongFeedback(t *testing.T) {
	text := strings.Repeat("é", 600)
	got := ParseText(text)
	assert.Equal(t, strings.Repeat("é", 500)+"...", got.FeedbackText)
}
