package internal

import (
	"fmt"
	"strings"
)

// Operation is the kind of text transformation requested
type Operation string

const (
	OperationSummarize Operation = "summarize"
	OperationTranslate Operation = "translate"
	OperationRewrite   Operation = "rewrite"
)

// Operations lists every supported operation in display order.
var Operations = []Operation{OperationSummarize, OperationTranslate, OperationRewrite}

// ParseOperation resolves a wire discriminant. Unknown values are an error,
// never a silent default.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(strings.ToLower(strings.TrimSpace(s))); op {
	case OperationSummarize, OperationTranslate, OperationRewrite:
		return op, nil
	default:
		return "", fmt.Errorf("%w: unknown operation %q", ErrEncodingFailure, s)
	}
}

func (o Operation) String() string {
	return string(o)
}

// Title returns the capitalised operation name used in headings.
func (o Operation) Title() string {
	switch o {
	case OperationSummarize:
		return "Summary"
	case OperationTranslate:
		return "Translation"
	case OperationRewrite:
		return "Rewrite"
	default:
		return string(o)
	}
}

// MarshalText implements encoding.TextMarshaler
func (o Operation) MarshalText() ([]byte, error) {
	if _, err := ParseOperation(string(o)); err != nil {
		return nil, err
	}
	return []byte(o), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Operation) UnmarshalText(text []byte) error {
	op, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Tone is the writing tone applied by a rewrite
type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
	ToneProfessional Tone = "professional"
	ToneConcise      Tone = "concise"
)

// ParseTone resolves a tone name; the empty string means formal.
func ParseTone(s string) (Tone, error) {
	switch t := Tone(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return ToneFormal, nil
	case ToneFormal, ToneCasual, ToneProfessional, ToneConcise:
		return t, nil
	default:
		return "", &ValidationError{Field: "tone", Message: fmt.Sprintf("must be one of formal, casual, professional, concise (got %q)", s)}
	}
}

// Description returns the human readable tone name
func (t Tone) Description() string {
	switch t {
	case ToneCasual:
		return "Casual"
	case ToneProfessional:
		return "Professional"
	case ToneConcise:
		return "Concise"
	default:
		return "Formal"
	}
}

// DefaultSentenceLimit is used when a summarize request does not set one
const DefaultSentenceLimit = 5

// Request is a single operation to run against an engine
type Request struct {
	Text           string    `json:"text"`
	Operation      Operation `json:"operation"`
	SentenceLimit  int       `json:"sentenceLimit,omitempty"`  // summarize only
	TargetLanguage string    `json:"targetLanguage,omitempty"` // translate only
	Tone           Tone      `json:"tone,omitempty"`           // rewrite only
}

// Normalize validates the request and fills operation defaults. Parameters
// that do not belong to the operation are cleared.
func (r Request) Normalize() (Request, error) {
	if strings.TrimSpace(r.Text) == "" {
		return r, &ValidationError{Field: "text", Message: "must not be empty"}
	}
	out := Request{Text: r.Text, Operation: r.Operation}
	switch r.Operation {
	case OperationSummarize:
		switch {
		case r.SentenceLimit == 0:
			out.SentenceLimit = DefaultSentenceLimit
		case r.SentenceLimit < 0:
			return r, &ValidationError{Field: "sentenceLimit", Message: "must be positive"}
		default:
			out.SentenceLimit = r.SentenceLimit
		}
	case OperationTranslate:
		lang := strings.TrimSpace(r.TargetLanguage)
		if lang == "" {
			return r, &ValidationError{Field: "targetLanguage", Message: "is required for translate"}
		}
		out.TargetLanguage = lang
	case OperationRewrite:
		tone, err := ParseTone(string(r.Tone))
		if err != nil {
			return r, err
		}
		out.Tone = tone
	default:
		return r, &ValidationError{Field: "operation", Message: fmt.Sprintf("unknown operation %q", r.Operation)}
	}
	return out, nil
}

// Response is the outcome of a processed request. Operation is authoritative
// for routing; RawDiagnostics is debug output only.
type Response struct {
	Text           string    `json:"text" yaml:"text"`
	Operation      Operation `json:"operation" yaml:"operation"`
	ElapsedSeconds float64   `json:"duration" yaml:"duration"`
	RawDiagnostics string    `json:"rawOutput,omitempty" yaml:"rawOutput,omitempty"`
	Formatted      string    `json:"markdownFormatted,omitempty" yaml:"markdownFormatted,omitempty"`
}
