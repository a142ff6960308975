package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

//go:embed builtin.yaml
var builtinYAML []byte

var (
	builtinOnce sync.Once
	builtinSet  *Ruleset
	builtinErr  error
)

// Builtin returns the embedded react-bootstrap to antd ruleset. The parsed
// registry is cached; callers must treat it as read-only.
func Builtin() (*Ruleset, error) {
	builtinOnce.Do(func() {
		builtinSet, builtinErr = Parse(builtinYAML)
	})
	return builtinSet, builtinErr
}

// Load reads and parses a ruleset file.
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ruleset: %w", err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Parse validates YAML ruleset data against the embedded JSON schema,
// decodes it, and runs semantic validation. Any failure here aborts the
// run before a single file is processed.
func Parse(data []byte) (*Ruleset, error) {
	// Schema validation first, over the generically decoded document,
	// so typos surface as field-level errors rather than silent zero values.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing ruleset YAML: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("validating ruleset schema: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRuleset, formatSchemaErrors(result))
	}

	var rs Ruleset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rs); err != nil {
		return nil, fmt.Errorf("decoding ruleset: %w", err)
	}

	if err := rs.compile(); err != nil {
		return nil, err
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func formatSchemaErrors(result *gojsonschema.Result) string {
	var buf bytes.Buffer
	for i, verr := range result.Errors() {
		if i > 0 {
			buf.WriteString("; ")
		}
		fmt.Fprintf(&buf, "%s: %s", verr.Field(), verr.Description())
	}
	return buf.String()
}
