package posttype

// DefaultTemplate is used when no default is configured.
const DefaultTemplate = "basic-page"

// TemplateConfig maps post types to page templates.
type TemplateConfig struct {
	Default   string
	Overrides map[Type]string
}

// SelectTemplate returns the override for t when one is set, otherwise the
// default template.
func SelectTemplate(t Type, cfg TemplateConfig) string {
	if tmpl := cfg.Overrides[t]; tmpl != "" {
		return tmpl
	}
	if cfg.Default == "" {
		return DefaultTemplate
	}
	return cfg.Default
}
