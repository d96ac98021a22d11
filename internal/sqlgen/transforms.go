package sqlgen

import (
	"fmt"
	"strings"

	"github.com/vvka-141/songplays/internal/schema"
)

type transform struct {
	from   []string
	render func(b *Builder, t schema.Table) string
}

// projection maps one target column to its source expression.
type projection struct {
	expr   string
	target string
}

var transforms = map[string]transform{
	schema.SongPlayName: {
		from:   []string{schema.StagingEventsName, schema.StagingSongsName},
		render: renderSongPlay,
	},
	schema.UserName: {
		from: []string{schema.StagingEventsName},
		render: dimension(schema.StagingEventsName, "user_id",
			projection{"user_id", "user_id"},
			projection{"first_name", "first_name"},
			projection{"last_name", "last_name"},
			projection{"gender", "gender"},
			projection{"level", "level"},
		),
	},
	schema.SongName: {
		from: []string{schema.StagingSongsName},
		render: dimension(schema.StagingSongsName, "song_id",
			projection{"song_id", "song_id"},
			projection{"title", "title"},
			projection{"artist_id", "artist_id"},
			projection{"year", "year"},
			projection{"duration", "duration"},
		),
	},
	schema.ArtistName: {
		from: []string{schema.StagingSongsName},
		render: dimension(schema.StagingSongsName, "artist_id",
			projection{"artist_id", "artist_id"},
			projection{"artist_name", "name"},
			projection{"artist_location", "location"},
			projection{"artist_latitude", "latitude"},
			projection{"artist_longitude", "longitude"},
		),
	},
	schema.TimeName: {
		from:   []string{schema.StagingEventsName},
		render: renderTime,
	},
}

// dimension renders INSERT ... SELECT DISTINCT from a single staging table,
// skipping rows whose natural key is null.
func dimension(source, key string, cols ...projection) func(*Builder, schema.Table) string {
	return func(b *Builder, t schema.Table) string {
		return renderInsert(b.Table(t.Name), cols, b.Table(source), key+" IS NOT NULL")
	}
}

func renderTime(b *Builder, t schema.Table) string {
	cols := []projection{
		{"ts", "start_time"},
		{"EXTRACT(HOUR FROM ts)", "hour"},
		{"EXTRACT(DAY FROM ts)", "day"},
		{"EXTRACT(WEEK FROM ts)", "week"},
		{"EXTRACT(MONTH FROM ts)", "month"},
		{"EXTRACT(YEAR FROM ts)", "year"},
		{b.dialect.Weekday("ts"), "weekday"},
	}
	return renderInsert(b.Table(t.Name), cols, b.Table(schema.StagingEventsName), "ts IS NOT NULL")
}

func renderSongPlay(b *Builder, t schema.Table) string {
	cols := []projection{
		{b.dialect.StartTime("se.ts"), "start_time"},
		{"se.user_id", "user_id"},
		{"se.level", "level"},
		{"ss.song_id", "song_id"},
		{"ss.artist_id", "artist_id"},
		{"se.session_id", "session_id"},
		{"ss.artist_location", "location"},
		{"se.user_agent", "user_agent"},
	}
	from := fmt.Sprintf("%s se\nJOIN %s ss\n  ON se.artist = ss.artist_name AND se.song = ss.title AND se.length = ss.duration",
		b.Table(schema.StagingEventsName), b.Table(schema.StagingSongsName))
	return renderInsert(b.Table(t.Name), cols, from, "")
}

func renderInsert(target string, cols []projection, from, where string) string {
	targets := make([]string, len(cols))
	exprs := make([]string, len(cols))
	for i, c := range cols {
		targets[i] = c.target
		if c.expr == c.target || strings.HasSuffix(c.expr, "."+c.target) {
			exprs[i] = c.expr
		} else {
			exprs[i] = c.expr + " AS " + c.target
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s)\n", target, strings.Join(targets, ", "))
	fmt.Fprintf(&sb, "SELECT DISTINCT %s\n", strings.Join(exprs, ",\n       "))
	fmt.Fprintf(&sb, "FROM %s", from)
	if where != "" {
		fmt.Fprintf(&sb, "\nWHERE %s", where)
	}
	sb.WriteString(";")
	return sb.String()
}
