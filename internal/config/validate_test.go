package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/songplays/pkg/songplays"
)

func s3Sources() songplays.Sources {
	return songplays.Sources{
		LogData:     "s3://udacity-dend/log_data",
		SongData:    "s3://udacity-dend/song_data",
		LogJSONPath: "s3://udacity-dend/log_json_path.json",
		IAMRoleARN:  "arn:aws:iam::123456789012:role/dwhRole",
	}
}

func TestValidateSources(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*songplays.Sources)
		serverSide bool
		wantErr    string
	}{
		{name: "valid server-side", serverSide: true},
		{name: "auto jsonpaths", mutate: func(s *songplays.Sources) { s.LogJSONPath = "auto" }, serverSide: true},
		{name: "local paths client-side", mutate: func(s *songplays.Sources) {
			s.LogData, s.SongData, s.LogJSONPath, s.IAMRoleARN = "./data/log_data", "file:///data/song_data", "./data/paths.json", ""
		}},
		{name: "local path server-side", mutate: func(s *songplays.Sources) { s.SongData = "./data/song_data" }, serverSide: true, wantErr: "must be an s3:// location"},
		{name: "missing log data", mutate: func(s *songplays.Sources) { s.LogData = "" }, wantErr: "log_data is required"},
		{name: "no bucket", mutate: func(s *songplays.Sources) { s.SongData = "s3:///song_data" }, wantErr: "has no bucket"},
		{name: "unsupported scheme", mutate: func(s *songplays.Sources) { s.LogData = "gs://bucket/log_data" }, wantErr: "unsupported scheme"},
		{name: "role required server-side", mutate: func(s *songplays.Sources) { s.IAMRoleARN = "" }, serverSide: true, wantErr: "iam_role arn is required"},
		{name: "malformed arn", mutate: func(s *songplays.Sources) { s.IAMRoleARN = "dwhRole" }, wantErr: "iam_role arn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := s3Sources()
			if tt.mutate != nil {
				tt.mutate(&s)
			}
			err := ValidateSources(s, tt.serverSide)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, songplays.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSources_JoinsAllProblems(t *testing.T) {
	err := ValidateSources(songplays.Sources{}, true)
	require.Error(t, err)
	for _, want := range []string{"log_data", "song_data", "log_jsonpath", "iam_role"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateRoleARN(t *testing.T) {
	assert.NoError(t, ValidateRoleARN("arn:aws:iam::123456789012:role/dwhRole"))
	assert.NoError(t, ValidateRoleARN("arn:aws:iam::123456789012:role/service-role/etl"))
	assert.Error(t, ValidateRoleARN("arn:aws:iam::123456789012:user/alice"))
	assert.Error(t, ValidateRoleARN("arn:aws:s3:::udacity-dend"))
	assert.Error(t, ValidateRoleARN("arn:aws:iam::123456789012:role/"))
	assert.Error(t, ValidateRoleARN("not-an-arn"))
}
