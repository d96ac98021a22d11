package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/songplays/internal/config"
	"github.com/vvka-141/songplays/pkg/songplays"
)

// connectionFlags holds the common connection-related flag values.
type connectionFlags struct {
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	azure          bool
	azureTenantID  string
	azureClientID  string
	aws            bool
	awsRegion      string
	google         bool
	googleInstance string
}

// warehouseFlags select how statements are rendered.
type warehouseFlags struct {
	dialect string
	schema  string
}

func addConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	// Connection string flag (mutually exclusive with granular flags)
	cmd.Flags().StringVar(&f.connection, "connection", "",
		"Warehouse connection string (postgresql://, redshift://, jdbc:redshift:// or host:port/db).\n"+
			"Mutually exclusive with granular flags (--host, --port, --username).\n"+
			"Alternative: SONGPLAYS_CONNECTION_STRING or DATABASE_URL environment variable.\n"+
			"Example: redshift://awsuser@dwhcluster.abc123.us-west-2.redshift.amazonaws.com/dev")

	// Granular connection flags (PostgreSQL standard)
	// Precedence: flag > environment variable > project file > default
	cmd.Flags().StringVarP(&f.host, "host", "h", "",
		"Warehouse host\n"+
			"Precedence: --host > $PGHOST > songplays.yaml > localhost")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0,
		"Warehouse port\n"+
			"Precedence: --port > $PGPORT > songplays.yaml > 5439 (redshift) or 5432 (postgres)")
	cmd.Flags().StringVarP(&f.username, "username", "U", "",
		"Warehouse user (default: $PGUSER, songplays.yaml or current OS user)")
	cmd.Flags().StringVarP(&f.database, "database", "d", "",
		"Warehouse database (overrides the connection string database, or $PGDATABASE)")
	cmd.Flags().StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")
	_ = cmd.RegisterFlagCompletionFunc("sslmode", completeSSLModes)

	// Cloud authentication
	cmd.Flags().BoolVar(&f.aws, "aws", false,
		"Use AWS IAM database authentication (token signed with the default credential chain)")
	cmd.Flags().StringVar(&f.awsRegion, "aws-region", "",
		"AWS region for IAM tokens (overrides $AWS_REGION)")
	cmd.Flags().BoolVar(&f.azure, "azure", false,
		"Enable Azure Entra ID authentication\n"+
			"Uses DefaultAzureCredential chain (Managed Identity, Azure CLI, etc.)")
	cmd.Flags().StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	cmd.Flags().StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")
	cmd.Flags().BoolVar(&f.google, "google", false,
		"Use Google Cloud SQL IAM authentication")
	cmd.Flags().StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")
}

func addWarehouseFlags(cmd *cobra.Command, f *warehouseFlags) {
	cmd.Flags().StringVar(&f.dialect, "dialect", "",
		"SQL dialect: redshift|postgres (default: songplays.yaml or redshift)")
	_ = cmd.RegisterFlagCompletionFunc("dialect", completeDialects)
	cmd.Flags().StringVar(&f.schema, "schema", "",
		"Schema that holds every table (default: songplays.yaml or the search_path)")
}

// loadProjectConfig loads godotenv and project configuration.
// A project without songplays.yaml or dwh.cfg yields an empty configuration.
func loadProjectConfig(sourcePath string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("project path %q: %w: %w", sourcePath, songplays.ErrInvalidConfig, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %q is not a directory: %w", sourcePath, songplays.ErrInvalidConfig)
	}

	projectCfg, err := config.Load(sourcePath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return &config.ProjectConfig{}, nil
		}
		return nil, fmt.Errorf("failed to load project configuration: %w: %w", songplays.ErrInvalidConfig, err)
	}
	return projectCfg, nil
}

// applyWarehouseFlags lets --dialect and --schema override the project file.
func applyWarehouseFlags(projectCfg *config.ProjectConfig, f warehouseFlags) {
	if f.dialect != "" {
		projectCfg.Warehouse.Dialect = f.dialect
	}
	if f.schema != "" {
		projectCfg.Warehouse.Schema = f.schema
	}
}

// resolveEffectiveTimeout returns the effective timeout, preferring songplays.yaml if flag wasn't set.
func resolveEffectiveTimeout(
	cmd *cobra.Command,
	projectCfg *config.ProjectConfig,
	flagTimeout time.Duration,
) (time.Duration, error) {
	if projectCfg != nil && projectCfg.Timeout != "" && !cmd.Flags().Changed("timeout") {
		return projectCfg.TimeoutDuration()
	}
	return flagTimeout, nil
}

// parsePhases maps --phase values to phases, keeping the order given.
func parsePhases(names []string) ([]songplays.Phase, error) {
	var phases []songplays.Phase
	for _, n := range names {
		p, err := songplays.ParsePhase(n)
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, nil
}
