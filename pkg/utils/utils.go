package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output formats understood by PrintFormatted
const (
	FormatText = "text"
	FormatYaml = "yaml"
	FormatJson = "json"
)

// PrintFormatted writes v as yaml or json
func PrintFormatted(w io.Writer, v any, format string) error {
	switch format {
	case FormatYaml:
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("error serializing to yaml: %v", err)
		}
		_, err = w.Write(b) // the yaml output ends with a newline
		return err
	case FormatJson:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("error serializing to json: %v", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// ValidFormat reports whether format is text or one of the PrintFormatted formats
func ValidFormat(format string) bool {
	switch format {
	case FormatText, FormatYaml, FormatJson:
		return true
	}
	return false
}

// ToInt converts a config value, which may be a number or a numeric string
func ToInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("%v is not an integer", val)
		}
		return int(val), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", val)
		}
		return i, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func IsRootUser() bool {
	return os.Geteuid() == 0
}

func IsTerminalOutput() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
