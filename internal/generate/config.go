package generate

// Config controls the behavior of the Service.
type Config struct {
	// MaxTokens is the token budget for a single LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// VocabCount is how many vocabulary items one refill asks for.
	VocabCount int

	// PatternCount is how many sentence patterns one refill asks for.
	PatternCount int

	// SampleCount is how many native-language sample answers and target
	// script variants are requested.
	SampleCount int

	// MaxExisting caps the number of library keys listed in a prompt as
	// "already known, do not repeat".
	MaxExisting int

	// MaxMastered caps the number of mastered scripts quoted as context
	// when drafting sample answers.
	MaxMastered int
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:    4096,
		Temperature:  0.8,
		VocabCount:   30,
		PatternCount: 10,
		SampleCount:  3,
		MaxExisting:  60,
		MaxMastered:  5,
	}
}
