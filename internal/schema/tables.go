package schema

const (
	StagingEventsName = "staging_events"
	StagingSongsName  = "staging_songs"
	SongPlayName      = "fact_song_play"
	UserName          = "dim_user"
	SongName          = "dim_song"
	ArtistName        = "dim_artist"
	TimeName          = "dim_time"
)

// StagingEvents holds one row per user interaction event from the log feed.
// Column order matches the JSONPaths descriptor of the event source.
var StagingEvents = Table{
	Name: StagingEventsName,
	Kind: Staging,
	Columns: []Column{
		{Name: "artist", Type: Text},
		{Name: "auth", Type: Text},
		{Name: "first_name", Type: Text},
		{Name: "gender", Type: Char},
		{Name: "item_in_session", Type: Integer},
		{Name: "last_name", Type: Text},
		{Name: "length", Type: Float},
		{Name: "level", Type: Text},
		{Name: "location", Type: Text},
		{Name: "method", Type: Text},
		{Name: "page", Type: Text},
		{Name: "registration", Type: Float},
		{Name: "session_id", Type: Integer},
		{Name: "song", Type: Text},
		{Name: "status", Type: Integer},
		{Name: "ts", Type: Timestamp},
		{Name: "user_agent", Type: Text},
		{Name: "user_id", Type: Integer},
	},
}

// StagingSongs holds one row per song metadata record.
var StagingSongs = Table{
	Name: StagingSongsName,
	Kind: Staging,
	Columns: []Column{
		{Name: "num_songs", Type: Integer},
		{Name: "artist_id", Type: Text},
		{Name: "artist_latitude", Type: Float},
		{Name: "artist_longitude", Type: Float},
		{Name: "artist_location", Type: Text},
		{Name: "artist_name", Type: Text},
		{Name: "song_id", Type: Text},
		{Name: "title", Type: Text},
		{Name: "duration", Type: Float},
		{Name: "year", Type: Integer},
	},
}

// SongPlay is the fact table: one row per event matched to a known song.
var SongPlay = Table{
	Name: SongPlayName,
	Kind: Fact,
	Columns: []Column{
		{Name: "songplay_id", Type: Integer, PrimaryKey: true, Identity: true, SortKey: true},
		{Name: "start_time", Type: Timestamp},
		{Name: "user_id", Type: Integer},
		{Name: "level", Type: Text},
		{Name: "song_id", Type: Text},
		{Name: "artist_id", Type: Text},
		{Name: "session_id", Type: Integer},
		{Name: "location", Type: Text},
		{Name: "user_agent", Type: Text},
	},
}

// User is the user dimension keyed by user_id.
var User = Table{
	Name: UserName,
	Kind: Dimension,
	Columns: []Column{
		{Name: "user_id", Type: Integer, PrimaryKey: true, DistKey: true},
		{Name: "first_name", Type: Text},
		{Name: "last_name", Type: Text},
		{Name: "gender", Type: Char},
		{Name: "level", Type: Text},
	},
}

// Song is the song dimension keyed by song_id.
var Song = Table{
	Name: SongName,
	Kind: Dimension,
	Columns: []Column{
		{Name: "song_id", Type: Text, PrimaryKey: true},
		{Name: "title", Type: Text},
		{Name: "artist_id", Type: Text, DistKey: true},
		{Name: "year", Type: Integer, SortKey: true},
		{Name: "duration", Type: Float},
	},
}

// Artist is the artist dimension keyed by artist_id.
var Artist = Table{
	Name: ArtistName,
	Kind: Dimension,
	Columns: []Column{
		{Name: "artist_id", Type: Text, PrimaryKey: true, DistKey: true},
		{Name: "name", Type: Text},
		{Name: "location", Type: Text, SortKey: true},
		{Name: "latitude", Type: Float},
		{Name: "longitude", Type: Float},
	},
}

// Time materializes calendar attributes of every event timestamp.
var Time = Table{
	Name: TimeName,
	Kind: Dimension,
	Columns: []Column{
		{Name: "start_time", Type: Timestamp, PrimaryKey: true, DistKey: true, SortKey: true},
		{Name: "hour", Type: Integer},
		{Name: "day", Type: Integer},
		{Name: "week", Type: Integer},
		{Name: "month", Type: Integer},
		{Name: "year", Type: Integer},
		{Name: "weekday", Type: Integer},
	},
}

// All returns every table in declared order: staging first, then the fact
// table, then the dimensions.
func All() []Table {
	return []Table{StagingEvents, StagingSongs, SongPlay, User, Song, Artist, Time}
}

// Lookup returns the table with the given name.
func Lookup(name string) (Table, bool) {
	for _, t := range All() {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// OfKind returns the tables of kind k in declared order.
func OfKind(k Kind) []Table {
	var out []Table
	for _, t := range All() {
		if t.Kind == k {
			out = append(out, t)
		}
	}
	return out
}
