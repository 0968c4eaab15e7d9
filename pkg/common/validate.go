package common

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator"
)

// ErrInvalidInput marks structural contract violations in data handed to the
// pipeline. Such errors abort the run.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New()

// ValidateChapters checks the required chapter fields and that chapter
// numbers are strictly increasing.
func ValidateChapters(chapters []Chapter) error {
	prev := 0
	for i, ch := range chapters {
		if err := validate.Struct(ch); err != nil {
			return fmt.Errorf("%w: chapter at index %d: %v", ErrInvalidInput, i, err)
		}
		if ch.Number <= prev {
			return fmt.Errorf(
				"%w: chapter numbers must be strictly increasing, got %d after %d",
				ErrInvalidInput, ch.Number, prev,
			)
		}
		prev = ch.Number
	}
	return nil
}

// ValidateNovel checks the novel identity and all of its chapters.
func ValidateNovel(novel Novel) error {
	if novel.ID == "" {
		return fmt.Errorf("%w: novel id is empty", ErrInvalidInput)
	}
	return ValidateChapters(novel.Chapters)
}

// ValidateCharacters rejects character records without a name.
func ValidateCharacters(characters []Character) error {
	for i, c := range characters {
		if err := validate.Struct(c); err != nil {
			return fmt.Errorf("%w: character at index %d: %v", ErrInvalidInput, i, err)
		}
	}
	return nil
}
