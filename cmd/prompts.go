package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// validateSpaceName accepts names usable as a URL path segment
func validateSpaceName(input string) error {
	name := strings.TrimSpace(input)
	switch {
	case name == "":
		return errors.New("space name cannot be empty")
	case strings.ContainsAny(name, " \t/\\?#"):
		return errors.New("space name cannot contain spaces, slashes, ? or #")
	}
	return nil
}

// validateLabsDir accepts existing directories
func validateLabsDir(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("path cannot be empty")
	}
	if !isDir(strings.TrimSpace(input)) {
		return fmt.Errorf("%s is not a directory", input)
	}
	return nil
}

// promptSpace asks for a new space name
func promptSpace(suggestion string) (string, error) {
	prompt := promptui.Prompt{
		Label:    "Space name",
		Default:  suggestion,
		Validate: validateSpaceName,
	}
	name, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

// promptLabsDir asks where the labs checkout lives
func promptLabsDir() (string, error) {
	prompt := promptui.Prompt{
		Label:    "Path to the labs checkout",
		Validate: validateLabsDir,
	}
	dir, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(dir), nil
}
