package constants

import (
	"errors"
	"time"
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry limits. Retries are off unless configured.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Pagination.
const (
	// FirstPage is the page a list walk starts from.
	FirstPage = 1

	// StandardPageSize is the page size the CLI asks for.
	StandardPageSize = 200
)

// Request headers and values.
const (
	// AuthScheme prefixes the access token in the Authorization header.
	AuthScheme = "Zoho-oauthtoken"

	// ContentTypeJSON is the request and response body encoding.
	ContentTypeJSON = "application/json"

	// DefaultUserAgent identifies the client.
	DefaultUserAgent = "zsubs-client/1.0"
)

// Display.
const (
	// TableTruncateWidth is the column width of long values in tables.
	TableTruncateWidth = 40

	// TruncateSuffixLength is the length of the "..." suffix.
	TruncateSuffixLength = 3
)

// Output formats accepted by the CLI.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// CLI configuration.
const (
	// ConfigDirName is the directory under the user's home holding config.yml.
	ConfigDirName = ".zsubs"

	// EnvPrefix prefixes environment overrides, e.g. ZSUBS_TOKEN.
	EnvPrefix = "ZSUBS"
)

// Static errors for err113 compliance.
var (
	ErrNoToken          = errors.New("no access token configured, run 'zsubs config set-token'")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
	ErrInvalidOutput    = errors.New("invalid output format")
	ErrInvalidFilter    = errors.New("filters must look like key=value")
	ErrReservedFilter   = errors.New("filter name is set by a dedicated flag")
	ErrCustomerRequired = errors.New("--customer is required for this resource")
	ErrEmptyToken       = errors.New("token must not be empty")
	ErrDeleteAborted    = errors.New("delete aborted")
)
