package generator

// Scene is the working description of the source photograph. The rephrase step replaces it
// wholesale when a generation request is rejected.
type Scene struct {
	Description string
	Revisions   int
}

// Replace swaps in a new description.
func (s *Scene) Replace(description string) {
	s.Description = description
	s.Revisions++
}

// GeneratedImage is one image returned by the generation endpoint. Exactly one of URL or
// B64JSON is set.
type GeneratedImage struct {
	URL           string
	B64JSON       string
	RevisedPrompt string
}
