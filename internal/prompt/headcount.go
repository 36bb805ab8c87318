package prompt

// BuildHeadcountPrompt returns the instruction for the pre-check that counts
// people in the uploaded photo before the pipeline runs.
func BuildHeadcountPrompt() string {
	return `Count the number of people visible in the attached photo. Partial figures (cropped at the edge) count as people. Respond with a single JSON object and nothing else:
{"count": <integer>}`
}
