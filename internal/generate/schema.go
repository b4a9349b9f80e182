package generate

import "github.com/abhisek/opicdrill/internal/llm"

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func stringList(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": desc,
	}
}

func objectList(desc string, props map[string]any, required ...any) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": desc,
		"items": map[string]any{
			"type":                 "object",
			"properties":           props,
			"required":             required,
			"additionalProperties": false,
		},
	}
}

func object(props map[string]any, required ...any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// QuestionSchema is the response shape for a single interview question.
var QuestionSchema = &llm.Schema{
	Name:        "opic-question",
	Description: "One OPIc interview question",
	Definition: object(map[string]any{
		"question": stringProp("The question exactly as the interviewer would say it, in English"),
	}, "question"),
}

// VocabSchema is the response shape for a vocabulary batch.
var VocabSchema = &llm.Schema{
	Name:        "vocab-batch",
	Description: "High-frequency OPIc vocabulary with Korean meanings",
	Definition: object(map[string]any{
		"vocabs": objectList("Vocabulary items", map[string]any{
			"word":    stringProp("English word, idiom or colloquial expression"),
			"meaning": stringProp("Meaning in Korean"),
		}, "word", "meaning"),
	}, "vocabs"),
}

// StructureSchema is the response shape for a sentence-pattern batch.
var StructureSchema = &llm.Schema{
	Name:        "structure-batch",
	Description: "OPIc sentence structures as Korean/English pairs",
	Definition: object(map[string]any{
		"structures": objectList("Sentence structures", map[string]any{
			"korean":  stringProp("The pattern in Korean"),
			"english": stringProp("The same pattern in English"),
			"examples": objectList("Example sentences using the pattern", map[string]any{
				"korean":  stringProp("Example sentence in Korean"),
				"english": stringProp("Example sentence in English"),
			}, "korean", "english"),
		}, "korean", "english", "examples"),
	}, "structures"),
}

// SamplesSchema is the response shape for native-language sample answers.
var SamplesSchema = &llm.Schema{
	Name:        "native-samples",
	Description: "Natural Korean sample answers to an interview question",
	Definition: object(map[string]any{
		"samples": stringList("Sample answers in Korean"),
	}, "samples"),
}

// ScriptsSchema is the response shape for labelled English answer variants.
var ScriptsSchema = &llm.Schema{
	Name:        "target-scripts",
	Description: "English versions of an answer with their logic flow",
	Definition: object(map[string]any{
		"scripts": objectList("English answer variants", map[string]any{
			"label":     map[string]any{"type": "string", "enum": []any{LabelSimple, LabelNatural, LabelDetailed}},
			"text":      stringProp("The full English answer"),
			"logicFlow": stringList("Short keywords outlining the structure of the answer"),
		}, "label", "text", "logicFlow"),
	}, "scripts"),
}

// PatternsSchema is the response shape for common-pattern extraction.
var PatternsSchema = &llm.Schema{
	Name:        "common-patterns",
	Description: "Recurring useful sentence patterns across answer scripts",
	Definition: object(map[string]any{
		"patterns": objectList("Recurring patterns", map[string]any{
			"pattern":     stringProp("The reusable sentence pattern"),
			"explanation": stringProp("When and how to use it"),
			"example":     stringProp("An example sentence"),
		}, "pattern", "explanation", "example"),
	}, "patterns"),
}
