package deployconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

const (
	servicesWrapperKeyConstant            = "services"
	enabledFieldNameConstant              = "enabled"
	environmentFieldNameConstant          = "env"
	nullTagConstant                       = "!!null"
	mergeTagConstant                      = "!!merge"
	boolTagConstant                       = "!!bool"
	maximumMergeDepthConstant             = 32
	stringTagConstant                     = "!!str"
	descriptorUnreadableMessageConstant   = "unable to read descriptor"
	descriptorInvalidMessageConstant      = "descriptor is not valid YAML"
	descriptorEmptyMessageConstant        = "descriptor is empty"
	descriptorNotMappingMessageConstant   = "descriptor top level must map service names to records"
	serviceSettingsDecodeTemplateConstant = "unable to decode settings for service %s: %w"
)

// yamlLegacyBooleans holds the plain scalars that YAML 1.1 loaders read as booleans.
var yamlLegacyBooleans = map[string]bool{
	"yes": true,
	"Yes": true,
	"YES": true,
	"on":  true,
	"On":  true,
	"ON":  true,
	"no":  false,
	"No":  false,
	"NO":  false,
	"off": false,
	"Off": false,
	"OFF": false,
}

// ServiceEntry is one named record of a deployment descriptor.
// Record keeps the original YAML node so the record can be reproduced verbatim.
type ServiceEntry struct {
	Name   string
	Record *yaml.Node
}

// ServiceSettings holds the typed fields read from a service record.
type ServiceSettings struct {
	Environment string `mapstructure:"env"`
}

// Descriptor is the ordered list of service entries of a deployment descriptor.
type Descriptor struct {
	Entries []ServiceEntry
}

// LoadDescriptor reads and parses the descriptor stored at path.
func LoadDescriptor(path string) (Descriptor, error) {
	contents, readError := os.ReadFile(path)
	if readError != nil {
		return Descriptor{}, ConfigError{Source: path, Message: descriptorUnreadableMessageConstant, Cause: readError}
	}
	return ParseDescriptor(path, contents)
}

// ParseDescriptor parses descriptor contents. source names the origin in errors.
// A document whose only key is "services" holding a mapping of records is unwrapped.
func ParseDescriptor(source string, contents []byte) (Descriptor, error) {
	var document yaml.Node
	if unmarshalError := yaml.Unmarshal(contents, &document); unmarshalError != nil {
		return Descriptor{}, ConfigError{Source: source, Message: descriptorInvalidMessageConstant, Cause: unmarshalError}
	}
	if len(document.Content) == 0 {
		return Descriptor{}, ConfigError{Source: source, Message: descriptorEmptyMessageConstant}
	}

	rootNode := resolveAlias(document.Content[0])
	if rootNode.Kind == yaml.ScalarNode && rootNode.ShortTag() == nullTagConstant {
		return Descriptor{}, ConfigError{Source: source, Message: descriptorEmptyMessageConstant}
	}
	if rootNode.Kind != yaml.MappingNode {
		return Descriptor{}, ConfigError{Source: source, Message: descriptorNotMappingMessageConstant}
	}

	entries := collectEntries(unwrapServices(rootNode))
	if len(entries) == 0 {
		return Descriptor{}, ConfigError{Source: source, Message: descriptorEmptyMessageConstant}
	}

	return Descriptor{Entries: entries}, nil
}

// Enabled returns the entries whose record is a mapping with a truthy enabled field, in document order.
func (descriptor Descriptor) Enabled() []ServiceEntry {
	enabledEntries := make([]ServiceEntry, 0, len(descriptor.Entries))
	for _, entry := range descriptor.Entries {
		if entry.Enabled() {
			enabledEntries = append(enabledEntries, entry)
		}
	}
	return enabledEntries
}

// IsRecord reports whether the entry holds a mapping.
func (entry ServiceEntry) IsRecord() bool {
	return entry.Record != nil && entry.Record.Kind == yaml.MappingNode
}

// Enabled reports whether the entry is a record whose enabled field is truthy.
func (entry ServiceEntry) Enabled() bool {
	if !entry.IsRecord() {
		return false
	}
	return isTruthy(lookupField(entry.Record, enabledFieldNameConstant))
}

// Settings decodes the typed fields of the record. Scalar values are converted weakly,
// so "env: 2024" yields "2024".
func (entry ServiceEntry) Settings() (ServiceSettings, error) {
	rawSettings := map[string]any{}
	if environmentNode := lookupField(entry.Record, environmentFieldNameConstant); environmentNode != nil {
		var environmentValue any
		if decodeError := environmentNode.Decode(&environmentValue); decodeError != nil {
			return ServiceSettings{}, fmt.Errorf(serviceSettingsDecodeTemplateConstant, entry.Name, decodeError)
		}
		rawSettings[environmentFieldNameConstant] = environmentValue
	}

	settings := ServiceSettings{}
	if decodeError := mapstructure.WeakDecode(rawSettings, &settings); decodeError != nil {
		return ServiceSettings{}, fmt.Errorf(serviceSettingsDecodeTemplateConstant, entry.Name, decodeError)
	}
	settings.Environment = strings.TrimSpace(settings.Environment)
	return settings, nil
}

func unwrapServices(rootNode *yaml.Node) *yaml.Node {
	if len(rootNode.Content) != 2 || rootNode.Content[0].Value != servicesWrapperKeyConstant {
		return rootNode
	}
	wrappedNode := resolveAlias(rootNode.Content[1])
	if wrappedNode.Kind != yaml.MappingNode {
		return rootNode
	}
	if lookupField(wrappedNode, enabledFieldNameConstant) != nil {
		return rootNode
	}
	return wrappedNode
}

func collectEntries(mappingNode *yaml.Node) []ServiceEntry {
	pairs := mappingPairs(mappingNode)
	entries := make([]ServiceEntry, 0, len(pairs))
	for _, pair := range pairs {
		entries = append(entries, ServiceEntry{Name: pair.key, Record: pair.value})
	}
	return entries
}

type mappingPair struct {
	key   string
	value *yaml.Node
}

// mappingPairs lists scalar-keyed pairs in first-occurrence order; a repeated key keeps its last value.
// Merge keys are expanded ahead of the explicit pairs, so explicit keys always win and, within a
// merged sequence, earlier mappings win over later ones.
func mappingPairs(mappingNode *yaml.Node) []mappingPair {
	return flattenMapping(mappingNode, 0)
}

func flattenMapping(mappingNode *yaml.Node, depth int) []mappingPair {
	if mappingNode == nil || mappingNode.Kind != yaml.MappingNode || depth > maximumMergeDepthConstant {
		return nil
	}

	mergedPairs := make([]mappingPair, 0)
	explicitPairs := make([]mappingPair, 0, len(mappingNode.Content)/2)
	for index := 0; index+1 < len(mappingNode.Content); index += 2 {
		keyNode := resolveAlias(mappingNode.Content[index])
		if keyNode.Kind != yaml.ScalarNode {
			continue
		}
		valueNode := resolveAlias(mappingNode.Content[index+1])
		if keyNode.ShortTag() == mergeTagConstant {
			mergedPairs = append(mergedPairs, mergeSourcePairs(valueNode, depth+1)...)
			continue
		}
		explicitPairs = append(explicitPairs, mappingPair{key: scalarKeyText(keyNode), value: valueNode})
	}

	return collapsePairs(append(mergedPairs, explicitPairs...))
}

func mergeSourcePairs(sourceNode *yaml.Node, depth int) []mappingPair {
	switch sourceNode.Kind {
	case yaml.MappingNode:
		return flattenMapping(sourceNode, depth)
	case yaml.SequenceNode:
		sourcePairs := make([]mappingPair, 0)
		for index := len(sourceNode.Content) - 1; index >= 0; index-- {
			sourcePairs = append(sourcePairs, flattenMapping(resolveAlias(sourceNode.Content[index]), depth)...)
		}
		return sourcePairs
	default:
		return nil
	}
}

func collapsePairs(orderedPairs []mappingPair) []mappingPair {
	pairs := make([]mappingPair, 0, len(orderedPairs))
	positions := make(map[string]int, len(orderedPairs))
	for _, pair := range orderedPairs {
		if position, seen := positions[pair.key]; seen {
			pairs[position].value = pair.value
			continue
		}
		positions[pair.key] = len(pairs)
		pairs = append(pairs, pair)
	}
	return pairs
}

func scalarKeyText(keyNode *yaml.Node) string {
	if legacyBoolean, isLegacyBoolean := legacyBooleanValue(keyNode); isLegacyBoolean {
		return strconv.FormatBool(legacyBoolean)
	}
	switch keyNode.ShortTag() {
	case nullTagConstant:
		return "null"
	case boolTagConstant:
		var booleanKey bool
		if decodeError := keyNode.Decode(&booleanKey); decodeError == nil {
			return strconv.FormatBool(booleanKey)
		}
	}
	return keyNode.Value
}

func lookupField(mappingNode *yaml.Node, fieldName string) *yaml.Node {
	for _, pair := range mappingPairs(mappingNode) {
		if pair.key == fieldName {
			return pair.value
		}
	}
	return nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isTruthy(node *yaml.Node) bool {
	node = resolveAlias(node)
	if node == nil {
		return false
	}

	switch node.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		return len(node.Content) > 0
	case yaml.ScalarNode:
	default:
		return false
	}

	if legacyBoolean, isLegacyBoolean := legacyBooleanValue(node); isLegacyBoolean {
		return legacyBoolean
	}

	var scalarValue any
	if decodeError := node.Decode(&scalarValue); decodeError != nil {
		return false
	}

	switch typedValue := scalarValue.(type) {
	case nil:
		return false
	case bool:
		return typedValue
	case string:
		return len(typedValue) > 0
	case int:
		return typedValue != 0
	case int64:
		return typedValue != 0
	case uint64:
		return typedValue != 0
	case float64:
		return typedValue != 0
	default:
		return true
	}
}

// legacyBooleanValue reports the boolean a YAML 1.1 loader reads from a plain yes/no/on/off scalar.
func legacyBooleanValue(node *yaml.Node) (bool, bool) {
	if node == nil || node.Kind != yaml.ScalarNode || node.Style != 0 || node.ShortTag() != stringTagConstant {
		return false, false
	}
	legacyBoolean, isLegacyBoolean := yamlLegacyBooleans[node.Value]
	return legacyBoolean, isLegacyBoolean
}
