package config

// Source type identifiers, mirroring the sources table check constraint.
const (
	TypeRSS     = "rss"
	TypeTwitter = "twitter"
	TypeSearch  = "search"
)

type Source struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	URL      string `yaml:"url"`
	Query    string `yaml:"query"`
	Category string `yaml:"category"`
	Enabled  *bool  `yaml:"enabled"` // nil means enabled
}

type File struct {
	Sources []Source `yaml:"sources"`
}

// IsEnabled reports whether the source should be collected.
func (s Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}
