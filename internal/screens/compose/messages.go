package compose

import (
	"github.com/abhisek/opicdrill/internal/generate"
	"github.com/abhisek/opicdrill/internal/library"
)

// questionMsg carries a generated interview question.
type questionMsg struct {
	Question string
	Err      error
}

// samplesMsg carries native-language sample answers.
type samplesMsg struct {
	Samples []string
	Err     error
}

// variantsMsg carries the English script variants.
type variantsMsg struct {
	Variants []generate.Variant
	Err      error
}

// savedMsg is sent once the chosen variant was stored.
type savedMsg struct {
	Item library.Item
	Err  error
}
