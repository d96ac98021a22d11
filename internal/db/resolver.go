package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/songplays/internal/config"
	"github.com/vvka-141/songplays/internal/dialect"
	"github.com/vvka-141/songplays/pkg/songplays"
)

// GranularConnFlags holds the libpq-style connection flags (-h, -p, -U, -d).
//
// Password is deliberately not a flag. Use $PGPASSWORD, a connection string,
// or DB_PASSWORD in a legacy dwh.cfg.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server-identifying flag was given. Database is
// excluded because -d may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudAuthFlags selects a cloud authentication method from the CLI.
// Secrets are not flags; AZURE_CLIENT_SECRET comes from the environment.
type CloudAuthFlags struct {
	AWS            bool
	AWSRegion      string
	Azure          bool
	AzureTenantID  string
	AzureClientID  string
	Google         bool
	GoogleInstance string
}

func (c *CloudAuthFlags) count() int {
	n := 0
	for _, on := range []bool{c.AWS, c.Azure, c.Google} {
		if on {
			n++
		}
	}
	return n
}

// EnvVars are the libpq and cloud SDK environment variables the resolver reads.
type EnvVars struct {
	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string
	PGSSLMODE  string

	// SONGPLAYS_CONNECTION_STRING wins over DATABASE_URL.
	SONGPLAYS_CONNECTION_STRING string
	DATABASE_URL                string

	AWS_REGION string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:                      os.Getenv("PGHOST"),
		PGPORT:                      os.Getenv("PGPORT"),
		PGUSER:                      os.Getenv("PGUSER"),
		PGPASSWORD:                  os.Getenv("PGPASSWORD"),
		PGDATABASE:                  os.Getenv("PGDATABASE"),
		PGSSLMODE:                   os.Getenv("PGSSLMODE"),
		SONGPLAYS_CONNECTION_STRING: os.Getenv("SONGPLAYS_CONNECTION_STRING"),
		DATABASE_URL:                os.Getenv("DATABASE_URL"),
		AWS_REGION:                  os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:             os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:             os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:         os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ConnectionString returns the connection string supplied by the environment, if any.
func (e *EnvVars) ConnectionString() string {
	if e.SONGPLAYS_CONNECTION_STRING != "" {
		return e.SONGPLAYS_CONNECTION_STRING
	}
	return e.DATABASE_URL
}

// DefaultPortFor returns the listening port conventional for a dialect.
func DefaultPortFor(dialectName string) int {
	d, err := dialect.Get(dialectName)
	if err == nil && d.Name() == "redshift" {
		return RedshiftDefaultPort
	}
	return PostgresDefaultPort
}

// ResolveConnectionParams resolves the warehouse connection with libpq-style
// precedence:
//
//  1. --connection flag, parsed as a connection string
//  2. granular flags (-h, -p, -U), each falling back to PG* env, then the
//     project file, then defaults
//  3. SONGPLAYS_CONNECTION_STRING or DATABASE_URL, when no granular flag is set
//
// -d always overrides the database of a connection string. Giving both
// --connection and granular flags is an error. projectConfig may be nil.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudAuthFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*songplays.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudAuthFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"redshift://user@cluster.example.com/dev\"\n"+
				"  2. Granular flags: -h cluster.example.com -p 5439 -U awsuser -d dev\n"+
				"  3. Project file: connection section of songplays.yaml or [CLUSTER] in dwh.cfg: %w",
			songplays.ErrInvalidConfig,
		)
	}
	if cloudFlags.count() > 1 {
		return nil, fmt.Errorf("only one of --aws, --azure and --google may be given: %w", songplays.ErrInvalidConfig)
	}

	var cfg *songplays.ConnectionConfig
	var err error

	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envVars.ConnectionString() != "":
		cfg, err = resolveFromConnectionString(envVars.ConnectionString(), envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, projectConfig)
	}
	if err != nil {
		return nil, err
	}

	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}

	if err := applyAuthMethod(cfg, cloudFlags, envVars, projectConfig); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFromConnectionString(connStr string, envVars *EnvVars) (*songplays.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w: %w", songplays.ErrInvalidConfig, err)
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}
	if cfg.Password == "" {
		cfg.Password = envVars.PGPASSWORD
	}
	return cfg, nil
}

// resolveFromGranularParams applies flag > env > project file > default to
// each parameter independently.
func resolveFromGranularParams(
	flags *GranularConnFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*songplays.ConnectionConfig, error) {
	cfg := &songplays.ConnectionConfig{
		AuthMethod:       songplays.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	var pc config.ConnectionConfig
	var projectPassword string
	dialectName := config.DefaultDialect
	if projectConfig != nil {
		pc = projectConfig.Connection
		projectPassword = projectConfig.Password
		dialectName = projectConfig.Dialect()
	}

	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, "localhost")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case envVars.PGPORT != "":
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", envVars.PGPORT, songplays.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = DefaultPortFor(dialectName)
	}

	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = firstNonEmpty(envVars.PGPASSWORD, projectPassword)
	cfg.Database = firstNonEmpty(flags.Database, envVars.PGDATABASE, pc.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, "prefer")

	return cfg, nil
}

// applyAuthMethod picks the auth method: a cloud flag, else the project
// file's auth_method, else Azure when AZURE_* identifiers are set, else
// standard. Region, instance and tenant settings follow flag > env > file.
func applyAuthMethod(cfg *songplays.ConnectionConfig, flags *CloudAuthFlags, env *EnvVars, projectConfig *config.ProjectConfig) error {
	var pc config.ConnectionConfig
	var projectRegion string
	if projectConfig != nil {
		pc = projectConfig.Connection
		projectRegion = projectConfig.Region
	}

	method, err := songplays.ParseAuthMethod(pc.AuthMethod)
	if err != nil {
		return err
	}

	tenantID := firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
	clientID := firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)

	switch {
	case flags.AWS:
		method = songplays.AuthMethodAWSIAM
	case flags.Azure:
		method = songplays.AuthMethodAzureEntraID
	case flags.Google:
		method = songplays.AuthMethodGoogleIAM
	case method == songplays.AuthMethodStandard && (env.AZURE_TENANT_ID != "" || env.AZURE_CLIENT_ID != "") && cfg.Password == "":
		method = songplays.AuthMethodAzureEntraID
	}
	cfg.AuthMethod = method

	switch method {
	case songplays.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, pc.AWSRegion, projectRegion)
	case songplays.AuthMethodAzureEntraID:
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case songplays.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
