package presentation

import (
	"errors"

	"github.com/superle3/snippet-leaf/internal/snippet"
)

// ExpandDTO is the outcome of replaying a key script on a document.
type ExpandDTO struct {
	Document string   `json:"document"`
	Tabstops []string `json:"tabstops"`
	Diff     string   `json:"diff,omitempty"`
}

// DefinitionErrorDTO describes a snippet that failed to compile.
type DefinitionErrorDTO struct {
	Index   int    `json:"index"`
	Trigger string `json:"trigger"`
	Message string `json:"message"`
}

// CheckDTO summarizes a compiled snippet source.
type CheckDTO struct {
	Path      string               `json:"path"`
	Snippets  int                  `json:"snippets"`
	Modes     ModeCountsDTO        `json:"modes"`
	Automatic int                  `json:"automatic"`
	Regex     int                  `json:"regex"`
	Visual    int                  `json:"visual"`
	Functions int                  `json:"functions"`
	Errors    []DefinitionErrorDTO `json:"errors"`
}

// ModeCountsDTO counts the snippets allowed in each mode. A snippet that
// runs in several modes is counted once per mode.
type ModeCountsDTO struct {
	Text       int `json:"text"`
	InlineMath int `json:"inline_math"`
	BlockMath  int `json:"block_math"`
	Code       int `json:"code"`
}

// FromSet builds a report for set. err is the error returned while
// compiling it; every *snippet.DefinitionError inside it is listed.
func FromSet(path string, set *snippet.Set, err error) CheckDTO {
	dto := CheckDTO{
		Path:     path,
		Snippets: set.Len(),
		Errors:   []DefinitionErrorDTO{},
	}
	if set != nil {
		for _, s := range set.Snippets {
			m := s.Options.Mode
			if m.Text {
				dto.Modes.Text++
			}
			if m.InlineMath {
				dto.Modes.InlineMath++
			}
			if m.BlockMath {
				dto.Modes.BlockMath++
			}
			if m.Code {
				dto.Modes.Code++
			}
			if s.Options.Automatic {
				dto.Automatic++
			}
			if s.IsRegex() {
				dto.Regex++
			}
			if s.Options.Visual {
				dto.Visual++
			}
			if s.IsFunc() {
				dto.Functions++
			}
		}
	}

	for _, e := range definitionErrors(err) {
		dto.Errors = append(dto.Errors, DefinitionErrorDTO{
			Index:   e.Index,
			Trigger: e.Trigger,
			Message: e.Err.Error(),
		})
	}
	return dto
}

func definitionErrors(err error) []*snippet.DefinitionError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*snippet.DefinitionError
		for _, e := range joined.Unwrap() {
			out = append(out, definitionErrors(e)...)
		}
		return out
	}
	var de *snippet.DefinitionError
	if errors.As(err, &de) {
		return []*snippet.DefinitionError{de}
	}
	return nil
}
