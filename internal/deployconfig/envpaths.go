package deployconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	invalidEnvPathsPayloadTemplateConstant = "%w: %w"
	envPathsObjectExpectedMessageConstant  = "expected a JSON object"
	envPathsTrailingDataMessageConstant    = "unexpected data after JSON object"
	envPathsKeyExpectedMessageConstant     = "expected a service name"
)

// ParseEnvPaths decodes an env_paths payload into an ordered mapping.
// An empty payload yields an empty mapping. Every value must be a string path.
func ParseEnvPaths(payload []byte) (EnvPaths, error) {
	trimmedPayload := bytes.TrimSpace(payload)
	if len(trimmedPayload) == 0 {
		return EnvPaths{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmedPayload))
	openingToken, tokenError := decoder.Token()
	if tokenError != nil {
		return nil, fmt.Errorf(invalidEnvPathsPayloadTemplateConstant, ErrInvalidEnvPathsPayload, tokenError)
	}
	if delimiter, isDelimiter := openingToken.(json.Delim); !isDelimiter || delimiter != '{' {
		return nil, fmt.Errorf(invalidEnvPathsPayloadTemplateConstant, ErrInvalidEnvPathsPayload, errors.New(envPathsObjectExpectedMessageConstant))
	}

	envPaths := EnvPaths{}
	positions := map[string]int{}
	for decoder.More() {
		keyToken, keyError := decoder.Token()
		if keyError != nil {
			return nil, fmt.Errorf(invalidEnvPathsPayloadTemplateConstant, ErrInvalidEnvPathsPayload, keyError)
		}
		serviceName, isString := keyToken.(string)
		if !isString {
			return nil, fmt.Errorf(invalidEnvPathsPayloadTemplateConstant, ErrInvalidEnvPathsPayload, errors.New(envPathsKeyExpectedMessageConstant))
		}

		var environmentFilePath string
		if valueError := decoder.Decode(&environmentFilePath); valueError != nil {
			return nil, fmt.Errorf(invalidEnvPathsPayloadTemplateConstant, ErrInvalidEnvPathsPayload, valueError)
		}

		if position, seen := positions[serviceName]; seen {
			envPaths[position].Path = environmentFilePath
			continue
		}
		positions[serviceName] = len(envPaths)
		envPaths = append(envPaths, EnvPath{Service: serviceName, Path: environmentFilePath})
	}

	if _, closingError := decoder.Token(); closingError != nil {
		return nil, fmt.Errorf(invalidEnvPathsPayloadTemplateConstant, ErrInvalidEnvPathsPayload, closingError)
	}
	if _, trailingError := decoder.Token(); !errors.Is(trailingError, io.EOF) {
		return nil, fmt.Errorf(invalidEnvPathsPayloadTemplateConstant, ErrInvalidEnvPathsPayload, errors.New(envPathsTrailingDataMessageConstant))
	}

	return envPaths, nil
}
