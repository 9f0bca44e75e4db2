package generator

import (
	"fmt"
	"strings"

	"artengine/stages"
)

// Prompt is one chat completion request.
type Prompt struct {
	Model       string
	System      string
	User        string
	ImageURLs   []string
	MaxTokens   int64
	Temperature float64
}

const (
	describeSystem = "You are a helpful assistant."

	describeInstruction = "Carefully examine the provided image, focusing on its composition, including the setting, " +
		"central objects, characters, and distinguishing attributes. Pay special attention to the central subject in " +
		"the image, noting its posture, form, and any unique characteristics that stand out. Observe its stance, " +
		"whether it's standing, sitting, or in motion, and the expression it conveys, capturing the essence of its " +
		"demeanor and physicality. Also, take note of the color palette used in the image, particularly the hues and " +
		"shades defining the bear, the background, and other significant elements. Your task is to formulate a " +
		"detailed prompt that encapsulates the core aspects of the image. This prompt should guide the creation of an " +
		"artwork that closely resembles the original, with a strong focus on replicating the central subject's " +
		"distinct posture, form, and coloration, as well as the overall mood and setting. Specify the art style to " +
		"ensure that the central subject and other key components are depicted with accuracy and fidelity to the " +
		"original image, maintaining the integrity of the composition and the atmosphere conveyed.%s Ignore any text " +
		"in the image. Only output the prompt in natural English language, nothing else."

	bearClause = " Create an image of a bear if none was detected in the previously analyzed imagery. The bear " +
		"should appear angry and ferocious, with its mouth open in a roar. The style should be consistent with the " +
		"prior analysis."

	// Chat parameters shared by the describe and rephrase requests.
	chatMaxTokens   = 2048
	chatTemperature = 0.1
)

// DescribeInstruction returns the vision instruction, with the bear clause when forceBear is set.
func DescribeInstruction(forceBear bool) string {
	clause := ""
	if forceBear {
		clause = bearClause
	}
	return fmt.Sprintf(describeInstruction, clause)
}

// BuildDescribePrompt asks a vision model to turn the image at imageURL into a generation prompt.
func BuildDescribePrompt(model, imageURL string, forceBear bool) Prompt {
	return Prompt{
		Model:       model,
		System:      describeSystem,
		User:        DescribeInstruction(forceBear),
		ImageURLs:   []string{imageURL},
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	}
}

// BuildRephrasePrompt asks a text model to revise a description the image endpoint rejected.
// The system message is left empty so the request is a single user turn.
func BuildRephrasePrompt(model, description string, cause error) Prompt {
	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}
	user := fmt.Sprintf("The following prompt was denied by DALL-E: %s with this error: %s. "+
		"Change it so that it is accepted in the next try.", description, reason)
	return Prompt{
		Model:       model,
		User:        user,
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	}
}

// StagePrompt composes the image generation prompt for one art stage.
func StagePrompt(stage stages.ArtStage, description string) string {
	var sb strings.Builder
	sb.WriteString(stage.Definition)
	sb.WriteString(" Generate a ")
	sb.WriteString(stage.Type)
	sb.WriteString(", following the definition from before, for the following image description: ")
	sb.WriteString(strings.TrimSpace(description))
	sb.WriteString(". Make sure that all central subjects are in frame. Don't generate the image from the description, but make sure to generate a ")
	sb.WriteString(stage.Type)
	sb.WriteString(", based on that description. Don't generate any text, logos or other attributes outside of the ")
	sb.WriteString(stage.Type)
	return sb.String()
}
