package questiongen

import "github.com/abhisek/quizgen/internal/llm"

// QuestionsSchema is the structured output requested from the model.
// Every property is required and extra properties are rejected, which
// is what OpenAI's strict mode demands. Counts and enum values are
// checked after parsing so that a near miss can still be repaired.
var QuestionsSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A list of multiple choice questions about the source text",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "Clear, specific question text",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 answer options, one of them correct",
						},
						"correct_answer": map[string]any{
							"type":        "string",
							"description": "The exact text of the correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct answer is correct, referencing the text",
						},
						"difficulty": map[string]any{
							"type":        "string",
							"description": "easy, medium or hard",
						},
						"bloom_level": map[string]any{
							"type":        "string",
							"description": "Bloom's taxonomy level, e.g. remember, understand, apply",
						},
						"category": map[string]any{
							"type":        "string",
							"description": "Short topic label",
						},
					},
					"required":             []any{"question", "options", "correct_answer", "explanation", "difficulty", "bloom_level", "category"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
