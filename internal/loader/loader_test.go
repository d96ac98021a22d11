package loader

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/songplays/internal/dialect"
	"github.com/vvka-141/songplays/internal/logging"
	"github.com/vvka-141/songplays/internal/schema"
	"github.com/vvka-141/songplays/pkg/songplays"
)

const eventJSONPaths = `{
  "jsonpaths": [
    "$['artist']", "$['auth']", "$['firstName']", "$['gender']", "$['itemInSession']",
    "$['lastName']", "$['length']", "$['level']", "$['location']", "$['method']",
    "$['page']", "$['registration']", "$['sessionId']", "$['song']", "$['status']",
    "$['ts']", "$['userAgent']", "$['userId']"
  ]
}`

const eventLog = `{"artist":"Des'ree","auth":"Logged In","firstName":"Kaylee","gender":"F","itemInSession":1,"lastName":"Summers","length":246.30812,"level":"free","location":"Phoenix-Mesa-Scottsdale, AZ","method":"PUT","page":"NextSong","registration":1540344794796.0,"sessionId":139,"song":"You Gotta Be","status":200,"ts":1541073600000,"userAgent":"Mozilla/5.0","userId":"8"}
{"artist":null,"auth":"Logged Out","firstName":null,"gender":null,"itemInSession":0,"lastName":null,"length":null,"level":"free","location":null,"method":"GET","page":"Home","registration":null,"sessionId":52,"song":null,"status":200,"ts":1541207073796,"userAgent":null,"userId":""}
`

// copyRecorder drains the copy source like the COPY protocol would.
type copyRecorder struct {
	table   pgx.Identifier
	columns []string
	rows    [][]any
	err     error
}

func (c *copyRecorder) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (c *copyRecorder) QueryRow(context.Context, string, ...any) songplays.Row {
	return nil
}

func (c *copyRecorder) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	c.table = table
	c.columns = columns
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		c.rows = append(c.rows, vals)
	}
	if err := src.Err(); err != nil {
		return 0, err
	}
	if c.err != nil {
		return 0, c.err
	}
	return int64(len(c.rows)), nil
}

func newTestLoader() *Loader {
	return New(LocalStore{}, logging.NewNullLogger())
}

func TestNew_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { New(nil, logging.NewNullLogger()) })
	assert.Panics(t, func() { New(LocalStore{}, nil) })
}

func TestLoad_EventsWithJSONPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "log_json_path.json"), eventJSONPaths)
	writeFile(t, filepath.Join(dir, "log_data", "2018", "11", "2018-11-01-events.json"), eventLog)

	conn := &copyRecorder{}
	n, err := newTestLoader().Load(context.Background(), conn, "dwh", schema.StagingEvents, dialect.CopySpec{
		Source:      filepath.Join(dir, "log_data"),
		JSONPaths:   filepath.Join(dir, "log_json_path.json"),
		EpochMillis: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, pgx.Identifier{"dwh", "staging_events"}, conn.table)
	assert.Equal(t, schema.StagingEvents.ColumnNames(), conn.columns)

	first := conn.rows[0]
	assert.Equal(t, "Des'ree", first[0])
	assert.Equal(t, "Kaylee", first[2])
	assert.Equal(t, int64(1), first[4])
	assert.Equal(t, 246.30812, first[6])
	assert.Equal(t, 1540344794796.0, first[11])
	assert.Equal(t, int64(139), first[12])
	assert.True(t, time.Date(2018, 11, 1, 12, 0, 0, 0, time.UTC).Equal(first[15].(time.Time)))
	assert.Equal(t, int64(8), first[17])

	second := conn.rows[1]
	assert.Nil(t, second[0])
	assert.Nil(t, second[6])
	assert.Nil(t, second[17], "empty userId loads as NULL")
}

func TestLoad_SongsAuto(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "song_data", "A", "TRAAAAK128F9318786.json"),
		`{"num_songs": 1, "artist_id": "ARJNIUY12298900C91", "artist_latitude": null, "artist_longitude": null, "artist_location": "", "artist_name": "Adelitas Way", "song_id": "SOBLFFE12AF72AA5BA", "title": "Scream", "duration": 213.9424, "year": 2009}`)
	writeFile(t, filepath.Join(dir, "song_data", "B", "TRAAABD128F429CF47.json"),
		`{"NUM_SONGS": 1, "Artist_Id": "ARMJAGH1187FB546F3", "artist_latitude": 35.14968, "artist_longitude": -90.04892, "artist_location": "Memphis, TN", "artist_name": "The Box Tops", "song_id": "SOCIWDW12A8C13D406", "title": "Soul Deep", "duration": 148.03546, "year": 1969}`)

	conn := &copyRecorder{}
	n, err := newTestLoader().Load(context.Background(), conn, "", schema.StagingSongs, dialect.CopySpec{
		Source:    filepath.Join(dir, "song_data"),
		JSONPaths: songplays.JSONPathsAuto,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, pgx.Identifier{"staging_songs"}, conn.table)

	assert.Equal(t, "", conn.rows[0][4], "empty text is kept")
	assert.Nil(t, conn.rows[0][2])
	assert.Equal(t, "ARMJAGH1187FB546F3", conn.rows[1][1], "keys match columns ignoring case")
	assert.Equal(t, int64(1), conn.rows[1][0])
	assert.Equal(t, int64(1969), conn.rows[1][9])
}

func TestLoad_NoObjects(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "other.json"), "{}")

	_, err := newTestLoader().Load(context.Background(), &copyRecorder{}, "", schema.StagingSongs, dialect.CopySpec{
		Source: filepath.Join(dir, "song_data"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, songplays.ErrLoadFailed)
	assert.Contains(t, err.Error(), "no objects found")
}

func TestLoad_TypeMismatchFailsWholeLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "song_data", "a.json"), `{"song_id":"S1","year":2009}`)
	writeFile(t, filepath.Join(dir, "song_data", "b.json"), `{"song_id":"S2","year":"nineteen"}`)

	conn := &copyRecorder{}
	_, err := newTestLoader().Load(context.Background(), conn, "", schema.StagingSongs, dialect.CopySpec{
		Source:    filepath.Join(dir, "song_data"),
		JSONPaths: songplays.JSONPathsAuto,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, songplays.ErrLoadFailed)
	assert.Contains(t, err.Error(), "b.json record 1: column year")
}

func TestLoad_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "song_data", "a.json"), `{"song_id":"S1"} {"song_id":`)

	_, err := newTestLoader().Load(context.Background(), &copyRecorder{}, "", schema.StagingSongs, dialect.CopySpec{
		Source: filepath.Join(dir, "song_data"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, songplays.ErrLoadFailed)
	assert.Contains(t, err.Error(), "record 2")
}

func TestLoad_JSONPathsColumnCountMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "paths.json"), `{"jsonpaths":["$.artist"]}`)
	writeFile(t, filepath.Join(dir, "log_data", "e.json"), `{}`)

	_, err := newTestLoader().Load(context.Background(), &copyRecorder{}, "", schema.StagingEvents, dialect.CopySpec{
		Source:    filepath.Join(dir, "log_data"),
		JSONPaths: filepath.Join(dir, "paths.json"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, songplays.ErrLoadFailed)
	assert.Contains(t, err.Error(), "lists 1 paths but staging_events has 18 columns")
}

func TestLoad_CopyError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "song_data", "a.json"), `{"song_id":"S1"}`)

	conn := &copyRecorder{err: errors.New("value too long for type character(1)")}
	_, err := newTestLoader().Load(context.Background(), conn, "", schema.StagingSongs, dialect.CopySpec{
		Source: filepath.Join(dir, "song_data"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, songplays.ErrLoadFailed)
	assert.Contains(t, err.Error(), "value too long")
}
