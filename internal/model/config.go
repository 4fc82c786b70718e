package model

import "time"

// Config holds the complete runtime configuration
type Config struct {
	Target    TargetConfig    `yaml:"target" mapstructure:"target"`
	Reference ReferenceConfig `yaml:"reference" mapstructure:"reference"`
	Citation  CitationConfig  `yaml:"citation" mapstructure:"citation"`
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Schema    Schema          `yaml:"schema" mapstructure:"schema"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`

	// Locale is the language tag used for labels, descriptions and
	// monolingual-text claims written to the target graph.
	Locale string `yaml:"locale" mapstructure:"locale"`
}

// TargetConfig describes the knowledge graph this tool writes into
type TargetConfig struct {
	SPARQLEndpoint string `yaml:"sparql_endpoint" mapstructure:"sparql_endpoint"`
	APIEndpoint    string `yaml:"api_endpoint" mapstructure:"api_endpoint"` // MediaWiki action API
	WikiURL        string `yaml:"wiki_url" mapstructure:"wiki_url"`         // base URL for result links

	// Tag is the namespace marker used in composite answers ("mardi:Q123")
	Tag string `yaml:"tag" mapstructure:"tag"`

	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`

	// Persist selects the portal export by default when neither the
	// --export flag nor the answer file names an export target.
	Persist bool `yaml:"persist" mapstructure:"persist"`

	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
	Burst     int     `yaml:"burst" mapstructure:"burst"`
}

// ReferenceConfig describes the read-only reference graph
type ReferenceConfig struct {
	SPARQLEndpoint string  `yaml:"sparql_endpoint" mapstructure:"sparql_endpoint"`
	Tag            string  `yaml:"tag" mapstructure:"tag"`
	RateLimit      float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst          int     `yaml:"burst" mapstructure:"burst"`
}

// CitationConfig describes the bibliographic lookup service
type CitationConfig struct {
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
}

// HTTPConfig holds shared HTTP client settings
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// CacheConfig controls caching of read-only lookups. Target-graph lookups
// are never cached: reconciliation must always observe the latest graph state.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// OutputConfig controls document rendering. Path is the default
// destination for the rendered document; the --out flag overrides it
// and empty means stdout.
type OutputConfig struct {
	Path    string `yaml:"path" mapstructure:"path"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the configuration defaults
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			SPARQLEndpoint: "https://query.portal.mardi4nfdi.de/proxy/wdqs/bigdata/namespace/wdq/sparql",
			APIEndpoint:    "https://portal.mardi4nfdi.de/w/api.php",
			WikiURL:        "https://portal.mardi4nfdi.de/wiki/",
			Tag:            "mardi",
			RateLimit:      5,
			Burst:          5,
		},
		Reference: ReferenceConfig{
			SPARQLEndpoint: "https://query.wikidata.org/sparql",
			Tag:            "wikidata",
			RateLimit:      1,
			Burst:          2,
		},
		Citation: CitationConfig{
			Endpoint: "https://api.crossref.org/works",
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "graphscribe/0.1 (+https://github.com/mardigraph/graphscribe)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Schema: DefaultSchema(),
		Locale: "en",
	}
}
