package cli

import (
	"fmt"
	"os"

	"github.com/vvka-141/songplays/internal/config"
	"github.com/vvka-141/songplays/internal/db"
	"github.com/vvka-141/songplays/pkg/songplays"
)

// resolveConnection turns connection flags, PG* and cloud environment
// variables, and the project file into one connection configuration.
func resolveConnection(flags connectionFlags, projectCfg *config.ProjectConfig) (*songplays.ConnectionConfig, error) {
	granularFlags := &db.GranularConnFlags{
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Database: flags.database,
		SSLMode:  flags.sslMode,
	}

	cloudFlags := &db.CloudAuthFlags{
		AWS:            flags.aws,
		AWSRegion:      flags.awsRegion,
		Azure:          flags.azure,
		AzureTenantID:  flags.azureTenantID,
		AzureClientID:  flags.azureClientID,
		Google:         flags.google,
		GoogleInstance: flags.googleInstance,
	}

	connConfig, err := db.ResolveConnectionParams(flags.connection, granularFlags, cloudFlags, db.LoadFromEnvironment(), projectCfg)
	if err != nil {
		return nil, err
	}
	if connConfig.Database == "" {
		return nil, fmt.Errorf("database name is required: %w\n"+
			"Provide via:\n"+
			"  1. --database/-d flag: songplays run ./dwh -d dev\n"+
			"  2. Connection string: songplays run ./dwh --connection \"redshift://user@host/dev\"\n"+
			"  3. Environment variable: export PGDATABASE=dev\n"+
			"  4. songplays.yaml connection.database or dwh.cfg DB_NAME", songplays.ErrInvalidConfig)
	}
	return connConfig, nil
}

// logConnectionVerbose logs connection details when verbose mode is enabled.
func logConnectionVerbose(connConfig *songplays.ConnectionConfig) {
	fmt.Fprintf(os.Stderr, "[VERBOSE] Connection resolved:\n")
	if connConfig.GoogleInstance != "" {
		fmt.Fprintf(os.Stderr, "  Instance: %s\n", connConfig.GoogleInstance)
	} else {
		fmt.Fprintf(os.Stderr, "  Host: %s\n", connConfig.Host)
		fmt.Fprintf(os.Stderr, "  Port: %d\n", connConfig.Port)
	}
	fmt.Fprintf(os.Stderr, "  User: %s\n", connConfig.Username)
	fmt.Fprintf(os.Stderr, "  Database: %s\n", connConfig.Database)
	fmt.Fprintf(os.Stderr, "  SSL Mode: %s\n", connConfig.SSLMode)
	fmt.Fprintf(os.Stderr, "  Auth Method: %s\n", connConfig.AuthMethod)
	if connConfig.AWSRegion != "" {
		fmt.Fprintf(os.Stderr, "  AWS Region: %s\n", connConfig.AWSRegion)
	}
}
