package config

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

const schemaFile = "schema.cue"

//go:embed schema.cue
var schemaSource string

// SchemaIssue is one violation of the configuration schema.
type SchemaIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func (i SchemaIssue) String() string {
	loc := i.Path
	if loc == "" {
		loc = "<document>"
	}
	if i.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", loc, i.Line, i.Message)
	}
	return fmt.Sprintf("%s: %s", loc, i.Message)
}

// CheckSchema lints a configuration document against the embedded CUE
// schema. When the document is wrapped in the server envelope only the
// config subtree is checked. An empty result means the document conforms.
func CheckSchema(data []byte, format Format) []SchemaIssue {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename(schemaFile))
	if err := schema.Err(); err != nil {
		return issuesFrom(err)
	}
	def := schema.LookupPath(cue.ParsePath("#AppConfig"))

	var doc cue.Value
	switch format {
	case FormatYAML:
		file, err := cueyaml.Extract("config.yaml", data)
		if err != nil {
			return issuesFrom(err)
		}
		doc = ctx.BuildFile(file)
	default:
		doc = ctx.CompileBytes(data, cue.Filename("config.json"))
	}
	if err := doc.Err(); err != nil {
		return issuesFrom(err)
	}

	if inner := doc.LookupPath(cue.ParsePath("config")); inner.Exists() {
		doc = inner
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return issuesFrom(err)
	}
	return nil
}

func issuesFrom(err error) []SchemaIssue {
	var issues []SchemaIssue
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		issue := SchemaIssue{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		for _, pos := range cueerrors.Positions(e) {
			if pos.IsValid() && pos.Filename() != schemaFile {
				issue.Line = pos.Line()
				break
			}
		}
		issues = append(issues, issue)
	}
	return issues
}
