package schema

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDocument() map[string]any {
	return map[string]any{
		"id_cuestionario": "cuestionario-2026",
		"version":         "1.0",
		"title":           "Cuestionario de prueba",
		"description":     "Una descripción corta",
		"total_questions": float64(2),
		"questions": []any{
			question(1),
			question(2),
		},
	}
}

func question(number int) map[string]any {
	return map[string]any{
		"question_number": float64(number),
		"text":            fmt.Sprintf("Pregunta %d", number),
		"question_type":   "multiple_choice",
		"options": []any{
			map[string]any{"option_key": "A", "option_text": "Primera opción", "score": float64(1)},
			map[string]any{"option_key": "B", "option_text": "Segunda opción", "score": float64(2)},
		},
	}
}

func fieldsOf(result Result) []string {
	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestValidateDocumentAcceptsWellFormedDocument(t *testing.T) {
	result := ValidateDocument(validDocument())
	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
}

func TestValidateJSONRejectsMalformedJSON(t *testing.T) {
	result := ValidateJSON([]byte(`{"id_cuestionario":`))
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "root", result.Errors[0].Field)
}

func TestValidateDocumentRejectsNonObject(t *testing.T) {
	result := ValidateDocument([]any{"not", "an", "object"})
	assert.False(t, result.Valid)
}

func TestValidateDocumentTopLevelFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(doc map[string]any)
		wantField string
	}{
		{"missing id", func(d map[string]any) { delete(d, "id_cuestionario") }, "id_cuestionario"},
		{"id with spaces", func(d map[string]any) { d["id_cuestionario"] = "mi cuestionario" }, "id_cuestionario"},
		{"missing version", func(d map[string]any) { d["version"] = "  " }, "version"},
		{"missing title", func(d map[string]any) { delete(d, "title") }, "title"},
		{"title too long", func(d map[string]any) { d["title"] = strings.Repeat("x", MaxTitleLength+1) }, "title"},
		{"description too long", func(d map[string]any) { d["description"] = strings.Repeat("x", MaxDescriptionLength+1) }, "description"},
		{"questions not array", func(d map[string]any) { d["questions"] = "nope" }, "questions"},
		{"empty questions", func(d map[string]any) { d["questions"] = []any{}; delete(d, "total_questions") }, "questions"},
		{"bad status", func(d map[string]any) { d["status"] = "published" }, "status"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := validDocument()
			test.mutate(doc)
			result := ValidateDocument(doc)
			assert.False(t, result.Valid)
			assert.Contains(t, fieldsOf(result), test.wantField)
		})
	}
}

func TestValidateDocumentDuplicateQuestionNumbers(t *testing.T) {
	doc := validDocument()
	doc["questions"] = []any{question(1), question(1)}

	result := ValidateDocument(doc)
	require.False(t, result.Valid)

	found := false
	for _, e := range result.Errors {
		if e.Message == "question_number 1 duplicado" {
			found = true
			assert.Equal(t, "questions[1].question_number", e.Field)
		}
	}
	assert.True(t, found, "expected a duplicate question_number error, got %v", result.Errors)
}

func TestValidateDocumentDuplicateOptionKeys(t *testing.T) {
	doc := validDocument()
	q := question(1)
	q["options"] = []any{
		map[string]any{"option_key": "A", "option_text": "Primera", "score": float64(1)},
		map[string]any{"option_key": "A", "option_text": "Repetida", "score": float64(2)},
	}
	doc["questions"] = []any{q, question(2)}

	result := ValidateDocument(doc)
	require.False(t, result.Valid)

	found := false
	for _, e := range result.Errors {
		if e.Message == `option_key "A" duplicado` {
			found = true
		}
	}
	assert.True(t, found, "expected a duplicate option_key error, got %v", result.Errors)
}

func TestValidateDocumentTotalQuestionsMismatch(t *testing.T) {
	doc := validDocument()
	doc["total_questions"] = float64(5)

	result := ValidateDocument(doc)
	require.False(t, result.Valid)
	assert.Contains(t, fieldsOf(result), "total_questions")
}

func TestValidateDocumentTooManyQuestions(t *testing.T) {
	questions := make([]any, 0, MaxQuestions+1)
	for i := 1; i <= MaxQuestions+1; i++ {
		questions = append(questions, question(i))
	}
	doc := validDocument()
	doc["questions"] = questions
	doc["total_questions"] = float64(len(questions))

	result := ValidateDocument(doc)
	require.False(t, result.Valid)
	assert.Contains(t, fieldsOf(result), "questions")
}

func TestValidateQuestionBounds(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(q map[string]any)
		wantField string
	}{
		{"zero question_number", func(q map[string]any) { q["question_number"] = float64(0) }, "questions[0].question_number"},
		{"missing text", func(q map[string]any) { q["text"] = "" }, "questions[0].text"},
		{"text too long", func(q map[string]any) { q["text"] = strings.Repeat("x", MaxQuestionTextLength+1) }, "questions[0].text"},
		{"bad question_type", func(q map[string]any) { q["question_type"] = "open_ended" }, "questions[0].question_type"},
		{"options not array", func(q map[string]any) { q["options"] = 7 }, "questions[0].options"},
		{"single option", func(q map[string]any) {
			q["options"] = []any{map[string]any{"option_key": "A", "option_text": "Sola", "score": float64(1)}}
		}, "questions[0].options"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := validDocument()
			q := question(1)
			test.mutate(q)
			doc["questions"] = []any{q, question(2)}

			result := ValidateDocument(doc)
			assert.False(t, result.Valid)
			assert.Contains(t, fieldsOf(result), test.wantField)
		})
	}
}

func TestValidateOptionBounds(t *testing.T) {
	doc := validDocument()
	q := question(1)
	q["options"] = []any{
		map[string]any{"option_key": "AB", "option_text": "", "score": "uno"},
		map[string]any{"option_key": "B", "option_text": "Bien", "score": float64(1)},
	}
	doc["questions"] = []any{q, question(2)}

	result := ValidateDocument(doc)
	require.False(t, result.Valid)
	fields := fieldsOf(result)
	assert.Contains(t, fields, "questions[0].options[0].option_key")
	assert.Contains(t, fields, "questions[0].options[0].option_text")
	assert.Contains(t, fields, "questions[0].options[0].score")
}

func TestFormatErrors(t *testing.T) {
	assert.Equal(t, "", FormatErrors(nil))
	assert.Equal(t, "solo uno", FormatErrors([]ValidationError{{Field: "f", Message: "solo uno"}}))

	var errs []ValidationError
	for i := 0; i < 7; i++ {
		errs = append(errs, ValidationError{Field: fmt.Sprintf("f%d", i), Message: fmt.Sprintf("error %d", i)})
	}
	out := FormatErrors(errs)
	assert.Contains(t, out, "7 errores encontrados:")
	assert.Contains(t, out, "f0: error 0")
	assert.Contains(t, out, "f4: error 4")
	assert.NotContains(t, out, "f5: error 5")
	assert.Contains(t, out, "... y 2 más")
}
