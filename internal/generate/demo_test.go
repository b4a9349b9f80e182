package generate

import (
	"context"
	"testing"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoProvider_CoversEveryPurpose(t *testing.T) {
	svc := New(DemoProvider(), DefaultConfig())
	ctx := context.Background()

	q, err := svc.Question(ctx)
	require.NoError(t, err)
	assert.Contains(t, q, "park")

	vocab, err := svc.Batch(ctx, library.KindVocab)
	require.NoError(t, err)
	assert.Len(t, vocab, 12)

	structures, err := svc.Batch(ctx, library.KindPattern)
	require.NoError(t, err)
	assert.Len(t, structures, 5)
	for _, it := range structures {
		assert.NotEmpty(t, it.Content.Examples)
	}

	samples, err := svc.NativeSamples(ctx, q, nil)
	require.NoError(t, err)
	assert.Len(t, samples, 3)

	variants, err := svc.Scripts(ctx, samples[0])
	require.NoError(t, err)
	require.Len(t, variants, 3)
	assert.Equal(t, LabelSimple, variants[0].Label)
	assert.NotEmpty(t, variants[2].Steps)

	scripts := []library.Item{
		library.New(library.KindScript, "a", library.Content{Answer: variants[0].Text}, t0),
		library.New(library.KindScript, "b", library.Content{Answer: variants[1].Text}, t0),
	}
	patterns, err := svc.CommonPatterns(ctx, scripts)
	require.NoError(t, err)
	assert.Len(t, patterns, 3)
}

func TestDemoAnswersMatchSchemas(t *testing.T) {
	schemas := map[string]string{
		PurposeQuestion:       QuestionSchema.Name,
		PurposeVocab:          VocabSchema.Name,
		PurposeStructures:     StructureSchema.Name,
		PurposeSamples:        SamplesSchema.Name,
		PurposeScripts:        ScriptsSchema.Name,
		PurposeCommonPatterns: PatternsSchema.Name,
	}
	for purpose := range demoAnswers {
		assert.Contains(t, schemas, purpose)
	}
	assert.Len(t, demoAnswers, len(schemas))
}
