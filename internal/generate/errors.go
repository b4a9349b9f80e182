package generate

import (
	"errors"
	"fmt"
)

// ErrGeneration marks every failure to obtain usable content from the
// provider: transport errors, malformed JSON, or an empty result.
var ErrGeneration = errors.New("generation failed")

// ErrNotGenerated is returned by Batch for kinds that are authored by the
// user rather than generated.
var ErrNotGenerated = errors.New("kind is not generated in batches")

func genErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrGeneration, op, err)
}
