package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"

	"github.com/vvka-141/songplays/pkg/songplays"
)

// ValidateSources checks source locations and the IAM role before any
// statement runs. Server-side loads read object storage from inside the
// warehouse, so they need s3:// locations and a role; client-side loads
// also accept local paths and need no role.
func ValidateSources(s songplays.Sources, serverSide bool) error {
	var errs []error

	check := func(name, loc string, allowAuto bool) {
		switch {
		case loc == "":
			errs = append(errs, fmt.Errorf("%s is required: %w", name, songplays.ErrInvalidConfig))
		case allowAuto && strings.EqualFold(loc, songplays.JSONPathsAuto):
		case strings.HasPrefix(loc, "s3://"):
			bucket, _, _ := strings.Cut(strings.TrimPrefix(loc, "s3://"), "/")
			if bucket == "" {
				errs = append(errs, fmt.Errorf("%s %q has no bucket: %w", name, loc, songplays.ErrInvalidConfig))
			}
		case strings.Contains(loc, "://") && !strings.HasPrefix(loc, "file://"):
			errs = append(errs, fmt.Errorf("%s %q: unsupported scheme: %w", name, loc, songplays.ErrInvalidConfig))
		case serverSide:
			errs = append(errs, fmt.Errorf("%s %q must be an s3:// location for server-side COPY: %w", name, loc, songplays.ErrInvalidConfig))
		}
	}
	check("log_data", s.LogData, false)
	check("song_data", s.SongData, false)
	check("log_jsonpath", s.LogJSONPath, true)

	switch {
	case s.IAMRoleARN != "":
		if err := ValidateRoleARN(s.IAMRoleARN); err != nil {
			errs = append(errs, err)
		}
	case serverSide:
		errs = append(errs, fmt.Errorf("iam_role arn is required for server-side COPY: %w", songplays.ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ValidateRoleARN checks that s is an IAM role ARN.
func ValidateRoleARN(s string) error {
	a, err := arn.Parse(s)
	if err != nil {
		return fmt.Errorf("iam_role arn %q: %v: %w", s, err, songplays.ErrInvalidConfig)
	}
	if a.Service != "iam" || !strings.HasPrefix(a.Resource, "role/") || len(a.Resource) == len("role/") {
		return fmt.Errorf("iam_role arn %q is not an IAM role: %w", s, songplays.ErrInvalidConfig)
	}
	return nil
}
