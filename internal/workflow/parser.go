package workflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	bperrors "github.com/alexisbeaulieu97/blueprint/pkg/errors"
)

// Format identifies a workflow file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// FormatForPath picks the decoder from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported workflow file extension %q", filepath.Ext(path))
	}
}

// Load reads a workflow file from disk, decodes it and runs the schema checks.
func Load(path string) (*Workflow, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, bperrors.NewParseError(path, 0, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, bperrors.NewParseError(path, 0, err)
	}

	return Parse(data, format, path)
}

// Parse decodes raw bytes in the given format. path is only used for error messages.
func Parse(data []byte, format Format, path string) (*Workflow, error) {
	var (
		wf  *Workflow
		err error
	)

	switch format {
	case FormatYAML:
		wf, err = parseYAML(data, path)
	case FormatJSON:
		wf, err = parseJSON(data, path)
	case FormatHCL:
		wf, err = parseHCL(data, path)
	default:
		err = bperrors.NewParseError(path, 0, fmt.Errorf("unsupported format %q", format))
	}
	if err != nil {
		return nil, err
	}

	if err := ValidateSchema(wf); err != nil {
		return nil, err
	}

	return wf, nil
}

func parseYAML(data []byte, path string) (*Workflow, error) {
	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, bperrors.NewParseError(path, extractLine(err), err)
	}
	return &wf, nil
}

func parseJSON(data []byte, path string) (*Workflow, error) {
	var wf Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, bperrors.NewParseError(path, jsonLine(data, err), err)
	}
	return &wf, nil
}

func jsonLine(data []byte, err error) int {
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return 0
	}
	offset := int(syntaxErr.Offset)
	if offset > len(data) {
		offset = len(data)
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}

	return line
}
