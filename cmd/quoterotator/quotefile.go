package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// quoteDocument is the mapping form of an import file.
type quoteDocument struct {
	Quotes []string `yaml:"quotes"`
}

// readQuoteFile reads quotes from path, or stdin for "-".
func readQuoteFile(path string) ([]string, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext == ".txt" {
		return parseQuoteLines(data), nil
	}

	return parseQuoteYAML(data)
}

// parseQuoteYAML accepts a sequence of strings or a mapping with a quotes
// sequence. JSON parses as YAML.
func parseQuoteYAML(data []byte) ([]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing quote file: %w", err)
	}

	if len(node.Content) == 0 {
		return nil, errors.New("quote file is empty")
	}

	root := node.Content[0]

	switch root.Kind {
	case yaml.SequenceNode:
		var quotes []string
		if err := root.Decode(&quotes); err != nil {
			return nil, fmt.Errorf("quote file must list strings: %w", err)
		}

		return quotes, nil

	case yaml.MappingNode:
		var doc quoteDocument
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("quote file must list strings under quotes: %w", err)
		}

		if doc.Quotes == nil {
			return nil, errors.New("quote file has no quotes key")
		}

		return doc.Quotes, nil

	default:
		return nil, fmt.Errorf("quote file must be a list or a mapping, line %d", root.Line)
	}
}

// parseQuoteLines returns each non-blank line.
func parseQuoteLines(data []byte) []string {
	var quotes []string

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			quotes = append(quotes, line)
		}
	}

	return quotes
}
