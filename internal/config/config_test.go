package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/songplays/pkg/songplays"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `connection:
  host: dwhcluster.abc123.us-west-2.redshift.amazonaws.com
  port: 5439
  username: dwhuser
  database: dwh
  sslmode: require
  auth_method: aws
  aws_region: us-west-2

warehouse:
  dialect: redshift
  schema: analytics

s3:
  log_data: s3://udacity-dend/log_data
  song_data: s3://udacity-dend/song_data
  log_jsonpath: s3://udacity-dend/log_json_path.json

iam_role:
  arn: arn:aws:iam::123456789012:role/dwhRole

region: us-west-2
timeout: 45m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "dwhcluster.abc123.us-west-2.redshift.amazonaws.com", cfg.Connection.Host)
	assert.Equal(t, 5439, cfg.Connection.Port)
	assert.Equal(t, "dwhuser", cfg.Connection.Username)
	assert.Equal(t, "dwh", cfg.Connection.Database)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, "aws", cfg.Connection.AuthMethod)
	assert.Equal(t, "redshift", cfg.Dialect())
	assert.Equal(t, "analytics", cfg.Warehouse.Schema)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.Path)
	assert.Empty(t, cfg.Password)

	assert.Equal(t, songplays.Sources{
		LogData:     "s3://udacity-dend/log_data",
		SongData:    "s3://udacity-dend/song_data",
		LogJSONPath: "s3://udacity-dend/log_json_path.json",
		IAMRoleARN:  "arn:aws:iam::123456789012:role/dwhRole",
		Region:      "us-west-2",
	}, cfg.Sources())

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, timeout)
}

func TestLoad_MinimalYAML(t *testing.T) {
	dir := t.TempDir()
	content := `warehouse:
  dialect: postgres
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Connection.Host)
	assert.Equal(t, 0, cfg.Connection.Port)
	assert.Equal(t, "postgres", cfg.Dialect())
	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, timeout)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{{invalid"), 0644))

	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(""), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "redshift", cfg.Dialect())
}

func TestLoad_YAMLTakesPrecedenceOverLegacy(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("connection:\n  host: from-yaml\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyConfigFileName), []byte("[CLUSTER]\nHOST=from-ini\n"), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", cfg.Connection.Host)
}

func TestTimeoutDuration_Invalid(t *testing.T) {
	cfg := &ProjectConfig{Timeout: "soon"}
	_, err := cfg.TimeoutDuration()
	assert.ErrorIs(t, err, songplays.ErrInvalidConfig)
}
