package common

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ConfirmationPrompt asks a yes/no question on stdin. An empty answer or end of
// input selects defaultYes.
func ConfirmationPrompt(prompt string, defaultYes bool) bool {
	return confirm(os.Stdin, os.Stdout, prompt, defaultYes)
}

func confirm(in io.Reader, out io.Writer, prompt string, defaultYes bool) bool {
	choices := "[y/N]"
	if defaultYes {
		choices = "[Y/n]"
	}
	reader := bufio.NewReader(in)

	for {
		fmt.Fprintf(out, "%s %s ", prompt, choices)
		input, err := reader.ReadString('\n')
		input = strings.ToLower(strings.TrimSpace(input))

		switch input {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		case "":
			return defaultYes
		}
		if err != nil {
			return defaultYes
		}
		fmt.Fprintln(out, `Invalid input. Please enter "y" or "n".`)
	}
}
