package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// LoadLegacy reads a dwh.cfg file:
//
//	[CLUSTER]
//	HOST=... DB_NAME=... DB_USER=... DB_PASSWORD=... DB_PORT=...
//	[IAM_ROLE]
//	ARN='arn:aws:iam::...:role/...'
//	[S3]
//	LOG_DATA='s3://...' LOG_JSONPATH='s3://...' SONG_DATA='s3://...'
//
// Values may be single- or double-quoted. The dialect is always Redshift.
func LoadLegacy(path string) (*ProjectConfig, error) {
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cluster := f.Section("cluster")
	cfg := &ProjectConfig{
		Connection: ConnectionConfig{
			Host:     value(cluster.Key("host")),
			Username: value(cluster.Key("db_user")),
			Database: value(cluster.Key("db_name")),
		},
		Warehouse: WarehouseConfig{Dialect: DefaultDialect},
		S3: S3Config{
			LogData:     value(f.Section("s3").Key("log_data")),
			SongData:    value(f.Section("s3").Key("song_data")),
			LogJSONPath: value(f.Section("s3").Key("log_jsonpath")),
		},
		IAMRole:  IAMRoleConfig{ARN: value(f.Section("iam_role").Key("arn"))},
		Region:   value(f.Section("s3").Key("region")),
		Password: value(cluster.Key("db_password")),
		Path:     path,
	}

	if port := value(cluster.Key("db_port")); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 || p > 65535 {
			return nil, fmt.Errorf("%s: invalid DB_PORT %q", path, port)
		}
		cfg.Connection.Port = p
	}

	return cfg, nil
}

func value(k *ini.Key) string {
	s := strings.TrimSpace(k.String())
	if n := len(s); n >= 2 && (s[0] == '\'' || s[0] == '"') && s[n-1] == s[0] {
		s = s[1 : n-1]
	}
	return s
}
