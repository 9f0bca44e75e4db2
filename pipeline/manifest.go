package pipeline

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"artengine/config"
)

// Outcome of one generation attempt.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeRejected  Outcome = "rejected"
)

// Attempt records one submission to the image endpoint.
type Attempt struct {
	Stage         string    `json:"stage"`
	Variation     int       `json:"variation"`
	Prompt        string    `json:"prompt"`
	Outcome       Outcome   `json:"outcome"`
	ImageURL      string    `json:"image_url,omitempty"`
	ImagePath     string    `json:"image_path,omitempty"`
	RevisedPrompt string    `json:"revised_prompt,omitempty"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Manifest is the record of one run, written next to the generated images.
type Manifest struct {
	RunID            string           `json:"run_id"`
	StartedAt        time.Time        `json:"started_at"`
	FinishedAt       time.Time        `json:"finished_at,omitzero"`
	Config           config.RunConfig `json:"config"`
	Stages           []string         `json:"stages"`
	SceneDescription string           `json:"scene_description"`
	SceneRevisions   int              `json:"scene_revisions"`
	RetriesUsed      int              `json:"retries_used"`
	MaxRetries       int              `json:"max_retries"`
	DeckPath         string           `json:"deck_path,omitempty"`
	Attempts         []Attempt        `json:"attempts"`
}

// NewManifest starts a manifest for cfg with a fresh run id.
func NewManifest(cfg config.RunConfig) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Config:    cfg,
	}
}

func (m *Manifest) appendAttempt(a Attempt) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	m.Attempts = append(m.Attempts, a)
}

// Save writes the manifest as indented JSON.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
