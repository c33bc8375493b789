package pipeline

import "strings"

// GuardrailFlags is a cheap post-generation quality check.
type GuardrailFlags struct {
	// TooGeneral is set when the answer admits being general knowledge or
	// carries no citation block.
	TooGeneral bool
	// HasReferences reports whether a citation block is present.
	HasReferences bool
}

// Guardrail inspects a finished answer for grounding signals.
func Guardrail(answer string) GuardrailFlags {
	text := strings.ToLower(answer)
	flags := GuardrailFlags{
		HasReferences: strings.Contains(text, "rujukan:"),
	}
	if strings.Contains(text, "jawaban ini bersifat umum") || !flags.HasReferences {
		flags.TooGeneral = true
	}
	return flags
}
