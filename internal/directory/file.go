// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package directory

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wneessen/installer-finder/internal/installer"
)

// ErrEmptyFile is returned by LoadFile when the file does not contain any installer records.
var ErrEmptyFile = errors.New("file contains no installer records")

type document struct {
	Installers []installer.Installer `yaml:"installers"`
}

// LoadFile reads installer records from a YAML or JSON file. The file either holds a list of
// records or a mapping with an "installers" list. The records are passed through Prepare.
func LoadFile(path string) ([]installer.Installer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read installer file: %w", err)
	}
	return Parse(data)
}

// Parse decodes installer records from YAML or JSON data. See LoadFile.
func Parse(data []byte) ([]installer.Installer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse installer file: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, ErrEmptyFile
	}

	var records []installer.Installer
	switch node := root.Content[0]; node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode installer list: %w", err)
		}
	case yaml.MappingNode:
		var doc document
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode installer document: %w", err)
		}
		records = doc.Installers
	default:
		return nil, errors.New("unsupported installer file layout: expected list or mapping")
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return Prepare(records...)
}
