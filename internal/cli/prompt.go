package cli

import (
	"github.com/charmbracelet/huh"
	"github.com/freqmod/gitfx/internal/logrefs"
)

// NewPromptFunc creates a logrefs.PromptFunc using huh's interactive input component.
func NewPromptFunc() logrefs.PromptFunc {
	return func(prompt string) (string, error) {
		var result string
		err := huh.NewInput().
			Prompt(prompt).
			Value(&result).
			Run()
		return result, err
	}
}
