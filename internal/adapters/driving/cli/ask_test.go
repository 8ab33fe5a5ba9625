package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docent-labs/docent/internal/core/domain"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestAskCmd_PrintsAnswerWithSources(t *testing.T) {
	answer := &mockAnswerService{answer: domain.Answer{
		Text: "You get 20 days of vacation (HR Policy, p1).",
		Citations: []domain.Citation{
			{Title: "HR Policy", Page: 1, Score: 0.91},
			{Title: "HR Policy", Page: 2, Score: 0.74},
		},
	}}
	restore := swapServices(answer, nil, nil, nil)
	defer restore()

	out, err := runCommand(t, "ask", "How many vacation days do I get?")

	require.NoError(t, err)
	assert.Contains(t, out, "You get 20 days of vacation")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "[1] HR Policy, p1 (0.91)")
	assert.Contains(t, out, "[2] HR Policy, p2 (0.74)")
	assert.Equal(t, "How many vacation days do I get?", answer.lastQuestion)
}

func TestAskCmd_FallbackHasNoSources(t *testing.T) {
	answer := &mockAnswerService{answer: domain.FallbackAnswer()}
	restore := swapServices(answer, nil, nil, nil)
	defer restore()

	out, err := runCommand(t, "ask", "Anything?")

	require.NoError(t, err)
	assert.Contains(t, out, domain.FallbackAnswerText)
	assert.NotContains(t, out, "Sources:")
}

func TestAskCmd_JSON(t *testing.T) {
	answer := &mockAnswerService{answer: domain.Answer{
		Text:      "Answer text.",
		Citations: []domain.Citation{{Title: "Doc", Page: 3, Score: 0.5}},
	}}
	restore := swapServices(answer, nil, nil, nil)
	defer restore()

	out, err := runCommand(t, "ask", "--json", "q")
	defer func() { askJSON = false }()

	require.NoError(t, err)
	assert.Contains(t, out, `"Answer text."`)
	assert.Contains(t, out, `"Doc"`)
}

func TestAskCmd_ServiceError(t *testing.T) {
	answer := &mockAnswerService{err: domain.ErrGenerationUnavailable}
	restore := swapServices(answer, nil, nil, nil)
	defer restore()

	_, err := runCommand(t, "ask", "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}
