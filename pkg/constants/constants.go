// Package constants provides shared constants used throughout the toolmap codebase.
// This includes timeouts, retry limits, file permissions, and the default field
// names of the dataset records, so every command agrees on them.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to external APIs
	DefaultHTTPTimeout = 30 * time.Second

	// LLMRequestTimeout bounds a single tagging request to the language model
	LLMRequestTimeout = 60 * time.Second

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second

	// DefaultRequestDelay is the pause between consecutive requests to a rate-limited API
	DefaultRequestDelay = 1 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries = 3

	// MaxLineSize is the largest NDJSON line accepted by the dataset reader (16 MB)
	MaxLineSize = 16 * 1024 * 1024

	// DefaultMaxTags is the default number of taxonomy tags assigned to a record
	DefaultMaxTags = 3

	// DefaultMinKeywordScore is the minimum keyword score for a category to be assigned
	DefaultMinKeywordScore = 2
)

// Dataset field names
const (
	// DefaultIDField identifies a project record
	DefaultIDField = "id"

	// DefaultMetadataField orders versions of the same project record
	DefaultMetadataField = "last_metadata_update"

	// RepositoriesField holds a record's repository objects
	RepositoriesField = "repositories"

	// RepoFieldPrefix marks flat repository attributes such as repo_url
	RepoFieldPrefix = "repo_"

	// DefaultFundingKeyField joins funding entries to project records
	DefaultFundingKeyField = "project_id"

	// DefaultSelfFundingField receives self-reported funding entries
	DefaultSelfFundingField = "self_funding"

	// DefaultOpRewardsField receives program reward entries
	DefaultOpRewardsField = "op_rewards"

	// DefaultTagsField receives taxonomy tags
	DefaultTagsField = "tags"

	// LanguagesField receives GitHub language statistics
	LanguagesField = "languages"

	// CollapsedSuffix is appended to the input stem for the default collapse output
	CollapsedSuffix = ".collapsed.json"
)

// External service defaults
const (
	// GitHubAPIURL is the base URL of the GitHub REST API
	GitHubAPIURL = "https://api.github.com"

	// GitHubAPIVersion is sent in the X-GitHub-Api-Version header
	GitHubAPIVersion = "2022-11-28"

	// DefaultTagModel is the Gemini model used for tagging
	DefaultTagModel = "gemini-2.0-flash"

	// DefaultCheckpointPath stores tagging progress between runs
	DefaultCheckpointPath = ".toolmap-tags.checkpoint.json"
)
