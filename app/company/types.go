package company

// Config describes one monitored company on the complaints site. Each
// company lives in its own YAML file under the companies directory; the
// file name (without extension) becomes the company slug.
type Config struct {
	Slug     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"` // Company page on the complaints site
	Name     string         `yaml:"name"`
	Primary  bool           `yaml:"primary"` // The chain itself, as opposed to a competitor
	Settings ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled         bool  `yaml:"enabled"`
	RefreshInterval int   `yaml:"refresh_interval"` // seconds between crawls
	MaxPages        *int  `yaml:"max_pages"`        // unset falls back to the global default, 0 enables adaptive mode
	PageStride      int   `yaml:"page_stride"`
	FetchDetails    *bool `yaml:"fetch_details"` // unset falls back to the global flag
}
