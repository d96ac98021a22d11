package songplays

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RunConfig contains all parameters needed for one pipeline run.
type RunConfig struct {
	// Connection is the resolved warehouse connection.
	Connection ConnectionConfig

	// Dialect selects statement rendering: "redshift" or "postgres".
	Dialect string

	// Schema optionally qualifies every table. Empty means the search_path default.
	Schema string

	// Sources are the object-storage locations and credential used by the load phase.
	Sources Sources

	// Phases selects which part of the plan runs. Empty means every phase.
	Phases []Phase

	// Timeout is the global timeout for the entire run.
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the RunConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *RunConfig) Validate() error {
	var errs []error

	if c.Connection.Host == "" && c.Connection.GoogleInstance == "" {
		errs = append(errs, fmt.Errorf("connection host is required: %w", ErrInvalidConfig))
	}
	if c.Connection.Database == "" {
		errs = append(errs, fmt.Errorf("database name is required: %w", ErrInvalidConfig))
	}
	if c.Dialect == "" {
		errs = append(errs, fmt.Errorf("dialect is required: %w", ErrInvalidConfig))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}
	if c.IncludesPhase(PhaseLoad) {
		if err := c.Sources.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// IncludesPhase reports whether the run executes steps of phase p.
func (c *RunConfig) IncludesPhase(p Phase) bool {
	if len(c.Phases) == 0 {
		return true
	}
	for _, q := range c.Phases {
		if q == p {
			return true
		}
	}
	return false
}

// Sources names the object-storage inputs of the load phase and the credential
// the warehouse uses to read them.
type Sources struct {
	// LogData is the prefix holding event log JSON objects (e.g. s3://bucket/log_data).
	LogData string

	// SongData is the prefix holding song metadata JSON objects.
	SongData string

	// LogJSONPath locates the JSONPaths descriptor for event records,
	// or JSONPathsAuto to match keys to column names.
	LogJSONPath string

	// IAMRoleARN is the role the warehouse assumes to read object storage.
	IAMRoleARN string

	// Region is the object-storage region. Defaults to DefaultRegion.
	Region string
}

// Validate checks that every source location is present.
// Format checks (URI schemes, ARN syntax) belong to the config package.
func (s Sources) Validate() error {
	var errs []error
	if s.LogData == "" {
		errs = append(errs, fmt.Errorf("log data location is required: %w", ErrInvalidConfig))
	}
	if s.SongData == "" {
		errs = append(errs, fmt.Errorf("song data location is required: %w", ErrInvalidConfig))
	}
	if s.LogJSONPath == "" {
		errs = append(errs, fmt.Errorf("log JSONPaths location is required (use %q for key matching): %w", JSONPathsAuto, ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// RegionOrDefault returns the configured region or DefaultRegion.
func (s Sources) RegionOrDefault() string {
	if s.Region == "" {
		return DefaultRegion
	}
	return s.Region
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWSRegion is used by AuthMethodAWSIAM to sign RDS auth tokens.
	AWSRegion string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID).
	// If all three are provided, Service Principal authentication is used.
	// Otherwise the DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps a config file value to an AuthMethod.
// The empty string selects AuthMethodStandard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam", "aws_iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam", "gcp":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}
