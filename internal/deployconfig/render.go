package deployconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	servicesSeparatorConstant           = " "
	renderRecordErrorTemplateConstant   = "unable to render record for service %s: %w"
	renderScalarErrorTemplateConstant   = "unable to render value %q: %w"
	unsupportedNodeKindTemplateConstant = "unsupported YAML node kind %d"
)

// Render serializes the result as the single-line payload written to standard output.
// services mode yields space-joined names; env_paths and full modes yield a JSON object
// whose keys follow document order.
func (result Result) Render() (string, error) {
	switch result.Mode {
	case OutputModeEnvPaths:
		return renderEnvPaths(result.EnvPaths)
	case OutputModeFull:
		return renderRecords(result.Records)
	default:
		return strings.Join(result.Services, servicesSeparatorConstant), nil
	}
}

func renderEnvPaths(envPaths EnvPaths) (string, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for index, envPath := range envPaths {
		if index > 0 {
			buffer.WriteByte(',')
		}
		if writeError := writeJSONScalar(&buffer, envPath.Service); writeError != nil {
			return "", writeError
		}
		buffer.WriteByte(':')
		if writeError := writeJSONScalar(&buffer, envPath.Path); writeError != nil {
			return "", writeError
		}
	}
	buffer.WriteByte('}')
	return buffer.String(), nil
}

func renderRecords(records []ServiceEntry) (string, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for index, record := range records {
		if index > 0 {
			buffer.WriteByte(',')
		}
		if writeError := writeJSONScalar(&buffer, record.Name); writeError != nil {
			return "", writeError
		}
		buffer.WriteByte(':')
		if writeError := writeJSONNode(&buffer, record.Record); writeError != nil {
			return "", fmt.Errorf(renderRecordErrorTemplateConstant, record.Name, writeError)
		}
	}
	buffer.WriteByte('}')
	return buffer.String(), nil
}

// writeJSONNode emits node as JSON, keeping mapping keys in document order.
func writeJSONNode(buffer *bytes.Buffer, node *yaml.Node) error {
	node = resolveAlias(node)
	if node == nil {
		buffer.WriteString("null")
		return nil
	}

	switch node.Kind {
	case yaml.MappingNode:
		buffer.WriteByte('{')
		for index, pair := range mappingPairs(node) {
			if index > 0 {
				buffer.WriteByte(',')
			}
			if writeError := writeJSONScalar(buffer, pair.key); writeError != nil {
				return writeError
			}
			buffer.WriteByte(':')
			if writeError := writeJSONNode(buffer, pair.value); writeError != nil {
				return writeError
			}
		}
		buffer.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		buffer.WriteByte('[')
		for index, itemNode := range node.Content {
			if index > 0 {
				buffer.WriteByte(',')
			}
			if writeError := writeJSONNode(buffer, itemNode); writeError != nil {
				return writeError
			}
		}
		buffer.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		if legacyBoolean, isLegacyBoolean := legacyBooleanValue(node); isLegacyBoolean {
			return writeJSONScalar(buffer, legacyBoolean)
		}
		var scalarValue any
		if decodeError := node.Decode(&scalarValue); decodeError != nil {
			return fmt.Errorf(renderScalarErrorTemplateConstant, node.Value, decodeError)
		}
		if writeError := writeJSONScalar(buffer, scalarValue); writeError != nil {
			return fmt.Errorf(renderScalarErrorTemplateConstant, node.Value, writeError)
		}
		return nil
	default:
		return fmt.Errorf(unsupportedNodeKindTemplateConstant, node.Kind)
	}
}

func writeJSONScalar(buffer *bytes.Buffer, value any) error {
	var encoded bytes.Buffer
	encoder := json.NewEncoder(&encoded)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return encodeError
	}
	buffer.Write(bytes.TrimRight(encoded.Bytes(), "\n"))
	return nil
}
