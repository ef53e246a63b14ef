// Package schema structurally validates an uploaded cuestionario document
// before it becomes a stored definition. The input is untrusted JSON, so
// every field is checked for presence, type and bounds, and the full list of
// field-scoped errors is returned rather than just the first.
package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	MaxQuestions          = 200
	MaxOptionsPerQuestion = 10
	MinOptionsPerQuestion = 2
	MaxTitleLength        = 200
	MaxDescriptionLength  = 1000
	MaxQuestionTextLength = 500
	MaxOptionTextLength   = 200
)

var (
	idPattern        = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	optionKeyPattern = regexp.MustCompile(`^[A-Za-z0-9]$`)
)

// ValidationError is one field-scoped problem in the document.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of a validation pass.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors"`
}

// ValidateJSON decodes raw bytes and validates the resulting document.
func ValidateJSON(raw []byte) Result {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Result{Errors: []ValidationError{{Field: "root", Message: "El archivo debe contener un objeto JSON válido"}}}
	}
	return ValidateDocument(doc)
}

// ValidateDocument validates an already-decoded document.
func ValidateDocument(doc any) Result {
	obj, ok := doc.(map[string]any)
	if !ok || obj == nil {
		return Result{Errors: []ValidationError{{Field: "root", Message: "El archivo debe contener un objeto JSON válido"}}}
	}

	var errs []ValidationError

	if !isNonEmptyString(obj["id_cuestionario"]) {
		errs = append(errs, ValidationError{Field: "id_cuestionario", Message: "id_cuestionario es requerido"})
	} else if !idPattern.MatchString(obj["id_cuestionario"].(string)) {
		errs = append(errs, ValidationError{Field: "id_cuestionario", Message: "id_cuestionario solo puede contener letras, números, guiones y guiones bajos"})
	}

	if !isNonEmptyString(obj["version"]) {
		errs = append(errs, ValidationError{Field: "version", Message: "version es requerida"})
	}

	if !isNonEmptyString(obj["title"]) {
		errs = append(errs, ValidationError{Field: "title", Message: "title es requerido"})
	} else if len(obj["title"].(string)) > MaxTitleLength {
		errs = append(errs, ValidationError{Field: "title", Message: fmt.Sprintf("title excede %d caracteres", MaxTitleLength)})
	}

	if description, ok := obj["description"].(string); ok && len(description) > MaxDescriptionLength {
		errs = append(errs, ValidationError{Field: "description", Message: fmt.Sprintf("description excede %d caracteres", MaxDescriptionLength)})
	}

	questions, ok := obj["questions"].([]any)
	if !ok {
		errs = append(errs, ValidationError{Field: "questions", Message: "questions debe ser un array"})
	} else {
		if len(questions) == 0 {
			errs = append(errs, ValidationError{Field: "questions", Message: "Debe haber al menos una pregunta"})
		}
		if len(questions) > MaxQuestions {
			errs = append(errs, ValidationError{Field: "questions", Message: fmt.Sprintf("Máximo %d preguntas permitidas", MaxQuestions)})
		}

		seenNumbers := make(map[float64]bool)
		for i, q := range questions {
			errs = append(errs, validateQuestion(q, i)...)
			if qObj, ok := q.(map[string]any); ok {
				if num, ok := qObj["question_number"].(float64); ok {
					if seenNumbers[num] {
						errs = append(errs, ValidationError{
							Field:   fmt.Sprintf("questions[%d].question_number", i),
							Message: fmt.Sprintf("question_number %d duplicado", int(num)),
						})
					}
					seenNumbers[num] = true
				}
			}
		}

		if total, ok := obj["total_questions"].(float64); ok {
			if int(total) != len(questions) {
				errs = append(errs, ValidationError{
					Field:   "total_questions",
					Message: fmt.Sprintf("total_questions (%d) no coincide con el número de preguntas (%d)", int(total), len(questions)),
				})
			}
		}
	}

	if status, present := obj["status"]; present {
		s, ok := status.(string)
		if !ok || (s != "draft" && s != "active" && s != "archived") {
			errs = append(errs, ValidationError{Field: "status", Message: `status debe ser "draft", "active" o "archived"`})
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func validateQuestion(question any, index int) []ValidationError {
	prefix := fmt.Sprintf("questions[%d]", index)

	obj, ok := question.(map[string]any)
	if !ok || obj == nil {
		return []ValidationError{{Field: prefix, Message: "Pregunta inválida"}}
	}

	var errs []ValidationError

	if num, ok := obj["question_number"].(float64); !ok || num < 1 {
		errs = append(errs, ValidationError{Field: prefix + ".question_number", Message: "question_number debe ser un número positivo"})
	}

	if !isNonEmptyString(obj["text"]) {
		errs = append(errs, ValidationError{Field: prefix + ".text", Message: "text es requerido"})
	} else if len(obj["text"].(string)) > MaxQuestionTextLength {
		errs = append(errs, ValidationError{Field: prefix + ".text", Message: fmt.Sprintf("text excede %d caracteres", MaxQuestionTextLength)})
	}

	if qt, _ := obj["question_type"].(string); qt != "multiple_choice" && qt != "forced_choice" {
		errs = append(errs, ValidationError{Field: prefix + ".question_type", Message: `question_type debe ser "multiple_choice" o "forced_choice"`})
	}

	options, ok := obj["options"].([]any)
	if !ok {
		errs = append(errs, ValidationError{Field: prefix + ".options", Message: "options debe ser un array"})
		return errs
	}

	if len(options) < MinOptionsPerQuestion {
		errs = append(errs, ValidationError{Field: prefix + ".options", Message: fmt.Sprintf("Debe haber al menos %d opciones", MinOptionsPerQuestion)})
	}
	if len(options) > MaxOptionsPerQuestion {
		errs = append(errs, ValidationError{Field: prefix + ".options", Message: fmt.Sprintf("Máximo %d opciones por pregunta", MaxOptionsPerQuestion)})
	}

	seenKeys := make(map[string]bool)
	for optIndex, opt := range options {
		errs = append(errs, validateOption(opt, index, optIndex)...)
		if optObj, ok := opt.(map[string]any); ok {
			if key, ok := optObj["option_key"].(string); ok {
				if seenKeys[key] {
					errs = append(errs, ValidationError{
						Field:   fmt.Sprintf("%s.options[%d].option_key", prefix, optIndex),
						Message: fmt.Sprintf("option_key %q duplicado", key),
					})
				}
				seenKeys[key] = true
			}
		}
	}

	return errs
}

func validateOption(option any, questionIndex, optionIndex int) []ValidationError {
	prefix := fmt.Sprintf("questions[%d].options[%d]", questionIndex, optionIndex)

	obj, ok := option.(map[string]any)
	if !ok || obj == nil {
		return []ValidationError{{Field: prefix, Message: "Opción inválida"}}
	}

	var errs []ValidationError

	if !isNonEmptyString(obj["option_key"]) {
		errs = append(errs, ValidationError{Field: prefix + ".option_key", Message: "option_key es requerido"})
	} else if !optionKeyPattern.MatchString(obj["option_key"].(string)) {
		errs = append(errs, ValidationError{Field: prefix + ".option_key", Message: "option_key debe ser una letra o número"})
	}

	if !isNonEmptyString(obj["option_text"]) {
		errs = append(errs, ValidationError{Field: prefix + ".option_text", Message: "option_text es requerido"})
	} else if len(obj["option_text"].(string)) > MaxOptionTextLength {
		errs = append(errs, ValidationError{Field: prefix + ".option_text", Message: fmt.Sprintf("option_text excede %d caracteres", MaxOptionTextLength)})
	}

	if _, ok := obj["score"].(float64); !ok {
		errs = append(errs, ValidationError{Field: prefix + ".score", Message: "score debe ser un número"})
	}

	return errs
}

func isNonEmptyString(value any) bool {
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) != ""
}

// FormatErrors condenses a validation error list for display. More than five
// errors are truncated with a trailing count.
func FormatErrors(errs []ValidationError) string {
	switch len(errs) {
	case 0:
		return ""
	case 1:
		return errs[0].Message
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d errores encontrados:", len(errs))
	shown := errs
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for _, e := range shown {
		fmt.Fprintf(&b, "\n- %s: %s", e.Field, e.Message)
	}
	if len(errs) > 5 {
		fmt.Fprintf(&b, "\n... y %d más", len(errs)-5)
	}
	return b.String()
}
