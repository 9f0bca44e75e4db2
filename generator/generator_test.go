package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artengine/stages"
)

type recordingLLM struct {
	prompts []Prompt
	replies []string
	err     error
}

func (r *recordingLLM) Complete(_ context.Context, p Prompt) (string, error) {
	r.prompts = append(r.prompts, p)
	if r.err != nil {
		return "", r.err
	}
	if len(r.replies) == 0 {
		return "", nil
	}
	reply := r.replies[0]
	r.replies = r.replies[1:]
	return reply, nil
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8, 0xff, 0xe0}, 0o644))
	return path
}

func TestAgent_Describe(t *testing.T) {
	llm := &recordingLLM{replies: []string{"  Prompt: A bear in the snow.  "}}
	agent, err := NewAgent(llm, AgentOptions{VisionModel: "vision-x"})
	require.NoError(t, err)

	scene, err := agent.Describe(context.Background(), writeImage(t))
	require.NoError(t, err)
	assert.Equal(t, "A bear in the snow.", scene.Description)
	assert.Zero(t, scene.Revisions)

	require.Len(t, llm.prompts, 1)
	p := llm.prompts[0]
	assert.Equal(t, "vision-x", p.Model)
	assert.Equal(t, "You are a helpful assistant.", p.System)
	assert.EqualValues(t, 2048, p.MaxTokens)
	assert.InDelta(t, 0.1, p.Temperature, 1e-9)
	require.Len(t, p.ImageURLs, 1)
	assert.True(t, strings.HasPrefix(p.ImageURLs[0], "data:image/jpeg;base64,"))
	assert.NotContains(t, p.User, "angry and ferocious")
}

func TestAgent_DescribeForceBear(t *testing.T) {
	llm := &recordingLLM{replies: []string{"A roaring bear."}}
	agent, err := NewAgent(llm, AgentOptions{ForceBear: true})
	require.NoError(t, err)

	_, err = agent.Describe(context.Background(), writeImage(t))
	require.NoError(t, err)
	assert.Contains(t, llm.prompts[0].User, "angry and ferocious, with its mouth open in a roar")
}

func TestAgent_DescribeErrors(t *testing.T) {
	agent, err := NewAgent(&recordingLLM{err: errors.New("boom")}, AgentOptions{})
	require.NoError(t, err)
	_, err = agent.Describe(context.Background(), writeImage(t))
	assert.ErrorContains(t, err, "boom")

	agent, err = NewAgent(&recordingLLM{replies: []string{"   "}}, AgentOptions{})
	require.NoError(t, err)
	_, err = agent.Describe(context.Background(), writeImage(t))
	assert.ErrorIs(t, err, ErrEmptyResponse)

	llm := &recordingLLM{}
	agent, err = NewAgent(llm, AgentOptions{})
	require.NoError(t, err)
	_, err = agent.Describe(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, llm.prompts, "no model call for an unreadable image")
}

func TestAgent_RephraseUsesFreshAnswer(t *testing.T) {
	llm := &recordingLLM{replies: []string{"A calm bear in a meadow."}}
	agent, err := NewAgent(llm, AgentOptions{RephraseModel: "text-x"})
	require.NoError(t, err)

	scene := &Scene{Description: "A violent bear attack."}
	require.NoError(t, agent.Rephrase(context.Background(), scene, errors.New("content_policy_violation")))

	assert.Equal(t, "A calm bear in a meadow.", scene.Description)
	assert.Equal(t, 1, scene.Revisions)

	require.Len(t, llm.prompts, 1)
	p := llm.prompts[0]
	assert.Equal(t, "text-x", p.Model)
	assert.Empty(t, p.System)
	assert.Empty(t, p.ImageURLs)
	assert.Contains(t, p.User, "A violent bear attack.")
	assert.Contains(t, p.User, "content_policy_violation")
}

func TestAgent_RephraseFailureKeepsScene(t *testing.T) {
	agent, err := NewAgent(&recordingLLM{err: errors.New("offline")}, AgentOptions{})
	require.NoError(t, err)

	scene := &Scene{Description: "original"}
	assert.Error(t, agent.Rephrase(context.Background(), scene, errors.New("rejected")))
	assert.Equal(t, "original", scene.Description)
	assert.Zero(t, scene.Revisions)
}

func TestNewAgent_RequiresClient(t *testing.T) {
	_, err := NewAgent(nil, AgentOptions{})
	assert.Error(t, err)
}

func TestStagePrompt(t *testing.T) {
	stage := stages.ArtStage{Type: "masterpiece", Definition: "Exact Copies are defined as: copies."}
	got := StagePrompt(stage, " A bear. ")

	assert.True(t, strings.HasPrefix(got, "Exact Copies are defined as: copies. Generate a masterpiece,"))
	assert.Contains(t, got, "for the following image description: A bear.. Make sure that all central subjects are in frame.")
	assert.Contains(t, got, "Don't generate the image from the description")
	assert.True(t, strings.HasSuffix(got, "Don't generate any text, logos or other attributes outside of the masterpiece"))
}

func TestPostProcess(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A bear.", "A bear."},
		{"  \"A bear.\"  ", "A bear."},
		{"Prompt: A bear.", "A bear."},
		{"**Revised prompt:** A bear.", "A bear."},
		{"New Prompt: \u201cA bear.\u201d", "A bear."},
		{"Prompting a bear.", "Prompting a bear."},
		{"'A bear.'", "A bear."},
		{
			"\"Hope\" is painted on the wall above a bear named \"Bruno\"",
			"\"Hope\" is painted on the wall above a bear named \"Bruno\"",
		},
		{"\u201cHope\u201d hangs above \u201cBruno\u201d", "\u201cHope\u201d hangs above \u201cBruno\u201d"},
	}
	for _, tt := range tests {
		got, err := PostProcess(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := PostProcess(" \n ")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestMockClient(t *testing.T) {
	var c Client = MockClient{}

	desc, err := c.Complete(context.Background(), Prompt{User: "x", ImageURLs: []string{"data:"}})
	require.NoError(t, err)
	assert.NotEmpty(t, desc)

	img, err := c.GenerateImage(context.Background(), "a bear")
	require.NoError(t, err)
	assert.Empty(t, img.URL)
	assert.NotEmpty(t, img.B64JSON)
}
