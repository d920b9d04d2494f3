package config

// UserInputField is a result header field the user has to supply because no
// source cell or default provides it.
type UserInputField struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Prompt string `json:"prompt"`
	FYI    string `json:"fyi,omitempty"`
}

// RuntimeSource is a source as presented to an interactive shell.
type RuntimeSource struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	UserInputFields []UserInputField `json:"userInputFields"`
}

// DeriveRuntimeSource computes the fields of result's header that source
// neither extracts nor defaults. Fields keep result header order; Type
// defaults to "text" and Prompt to the field name.
func DeriveRuntimeSource(result ResultConfig, source SourceConfig) RuntimeSource {
	covered := make(map[string]bool, len(source.Header)+len(source.DefaultValues))
	for _, p := range source.Header {
		covered[p.Name] = true
	}
	for name := range source.DefaultValues {
		covered[name] = true
	}

	fields := []UserInputField{}
	for _, p := range result.Header.Properties {
		if covered[p.Name] || p.DefaultValue != nil {
			continue
		}
		f := UserInputField{Name: p.Name, Type: p.Type, Prompt: p.Prompt, FYI: p.FYI}
		if f.Type == "" {
			f.Type = "text"
		}
		if f.Prompt == "" {
			f.Prompt = p.Name
		}
		fields = append(fields, f)
	}

	return RuntimeSource{
		Name:            source.Name,
		Description:     source.Description,
		UserInputFields: fields,
	}
}

// DeriveRuntimeSources derives every source of cfg, in configuration order.
func DeriveRuntimeSources(cfg *AppConfig) []RuntimeSource {
	out := make([]RuntimeSource, len(cfg.Sources))
	for i, s := range cfg.Sources {
		out[i] = DeriveRuntimeSource(cfg.Result, s)
	}
	return out
}
