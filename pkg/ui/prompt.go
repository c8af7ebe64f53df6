package ui

import (
	"bufio"
	"io"
	"strings"
)

// ReadLine reads one trimmed input line. EOF is reported so interactive
// loops can treat Ctrl+D as an exit.
func ReadLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if err == io.EOF && line == "" {
		return "", io.EOF
	}
	return strings.TrimSpace(line), nil
}

// AskForConfirmation prompts for a yes/no response, returning the default
// on empty input.
func AskForConfirmation(reader *bufio.Reader, prompt string, defaultYes bool) bool {
	suffix := "(y/N)"
	if defaultYes {
		suffix = "(Y/n)"
	}
	for {
		Print("%s %s: ", prompt, suffix)
		response, err := ReadLine(reader)
		if err != nil {
			return defaultYes
		}
		switch strings.ToLower(response) {
		case "":
			return defaultYes
		case "y", "yes":
			return true
		case "n", "no":
			return false
		default:
			Print("Please answer yes or no.\n")
		}
	}
}
