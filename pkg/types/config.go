package types

import "time"

// HTTPConfig holds shared HTTP settings used by commands that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "secpapers/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DatasetConfig locates the persisted dataset.
type DatasetConfig struct {
	// Path is the JSON dataset file (default data/papers.json).
	Path string `json:"path" yaml:"path"`
}

// SourceConfig holds settings for fetching the upstream README.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// ReadmeURL is the raw markdown document listing the awards.
	ReadmeURL string `json:"readme_url" yaml:"readme_url"`

	// GitHubToken authenticates README requests; loaded from .secrets/github-token.
	GitHubToken string `json:"github_token,omitempty" yaml:"github_token,omitempty"`
}

// DedupConfig holds the duplicate detection thresholds.
type DedupConfig struct {
	// SameGroupThreshold applies to papers sharing year and venue (default 0.85).
	SameGroupThreshold float64 `json:"same_group_threshold" yaml:"same_group_threshold"`

	// CrossYearThreshold applies to papers sharing only the venue (default 0.95).
	CrossYearThreshold float64 `json:"cross_year_threshold" yaml:"cross_year_threshold"`
}

// VerifyConfig holds settings for the DBLP cross-check.
type VerifyConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIBase is the DBLP publication search endpoint.
	APIBase string `json:"api_base" yaml:"api_base"`

	// RequestDelay is the fixed delay between non-cached requests (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// MaxHits is the number of candidates requested per query (default 10).
	MaxHits int `json:"max_hits" yaml:"max_hits"`

	// TitleThreshold is the minimum title ratio for a match (default 0.8).
	TitleThreshold float64 `json:"title_threshold" yaml:"title_threshold"`

	// AuthorThreshold is the minimum author overlap (default 0.5).
	AuthorThreshold float64 `json:"author_threshold" yaml:"author_threshold"`
}

// CacheConfig holds settings for the API response cache.
type CacheConfig struct {
	// Dir holds the cache database.
	Dir string `json:"dir" yaml:"dir"`

	// TTL is how long an entry stays fresh (default 7 days).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is the minimum level (trace, debug, info, warn, error).
	Level string `json:"level" yaml:"level"`

	// Format is json, console, or auto (console when stderr is a terminal).
	Format string `json:"format" yaml:"format"`
}

// Config groups every setting the CLI reads from flags, config file and env.
type Config struct {
	Log     LogConfig     `json:"log" yaml:"log"`
	Dataset DatasetConfig `json:"dataset" yaml:"dataset"`
	Source  SourceConfig  `json:"source" yaml:"source"`
	Dedup   DedupConfig   `json:"dedup" yaml:"dedup"`
	Verify  VerifyConfig  `json:"verify" yaml:"verify"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`
}
