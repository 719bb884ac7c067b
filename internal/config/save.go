package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/superle3/snippet-leaf/internal/log"
)

// ErrInvalidKey is returned by Save for keys that cannot be written.
var ErrInvalidKey = errors.New("invalid config key")

// Save sets one key in the config file, creating the file if needed. key
// uses dot notation for nested sections ("autofraction.enabled"). Comments
// and formatting of the rest of the file are preserved by editing the
// yaml.Node tree.
func Save(configPath, key string, value any) error {
	return SaveAll(configPath, map[string]any{key: value})
}

// SaveAll sets several keys in one write.
func SaveAll(configPath string, values map[string]any) error {
	data, err := os.ReadFile(configPath) //nolint:gosec // path comes from the config flag
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}

	for key, value := range values {
		var valueNode yaml.Node
		if err := valueNode.Encode(value); err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		if err := setKey(doc.Content[0], key, &valueNode); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := writeAtomic(configPath, buf.Bytes()); err != nil {
		return err
	}
	log.Info(log.CatConfig, "Saved config", "path", configPath, "keys", len(values))
	return nil
}

// setKey replaces or appends the value at a dotted path below root,
// creating intermediate mappings. A replaced value keeps its line comment.
func setKey(root *yaml.Node, key string, value *yaml.Node) error {
	parts := strings.Split(key, ".")
	node := root
	for i, part := range parts {
		if part == "" {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		if node.Kind != yaml.MappingNode {
			return fmt.Errorf("%w: %s is not a section", ErrInvalidKey, strings.Join(parts[:i], "."))
		}

		last := i == len(parts)-1
		idx := -1
		for j := 0; j < len(node.Content)-1; j += 2 {
			if node.Content[j].Value == part {
				idx = j
				break
			}
		}

		switch {
		case idx >= 0 && last:
			old := node.Content[idx+1]
			value.LineComment = old.LineComment
			node.Content[idx+1] = value
		case idx >= 0:
			node = node.Content[idx+1]
		case last:
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: part}, value)
		default:
			section := &yaml.Node{Kind: yaml.MappingNode}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: part}, section)
			node = section
		}
	}
	return nil
}

// writeAtomic writes to a temp file and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".snippetleaf.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
