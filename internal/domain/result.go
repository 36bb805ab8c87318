package domain

// GenerationResult is the final return of one pipeline run: the best-scoring
// artifact together with the verdict that was produced for it.
type GenerationResult struct {
	Artifact *GenerationArtifact `json:"artifact"`
	Verdict  *QualityVerdict     `json:"verdict"`
	Attempts int                 `json:"attempts"`
}
