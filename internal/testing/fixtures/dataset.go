// Package fixtures builds small source datasets on disk for pipeline tests.
// Datasets are laid out the way the warehouse buckets are: newline-delimited
// event logs under log_data/, one song object per file under song_data/, and
// a JSONPaths descriptor for the events.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vvka-141/songplays/pkg/songplays"
)

// Event is one event log record, keyed as the collector writes it.
type Event struct {
	Artist        *string  `json:"artist"`
	Auth          string   `json:"auth"`
	FirstName     string   `json:"firstName"`
	Gender        string   `json:"gender"`
	ItemInSession int      `json:"itemInSession"`
	LastName      string   `json:"lastName"`
	Length        *float64 `json:"length"`
	Level         string   `json:"level"`
	Location      string   `json:"location"`
	Method        string   `json:"method"`
	Page          string   `json:"page"`
	Registration  float64  `json:"registration"`
	SessionID     int      `json:"sessionId"`
	Song          *string  `json:"song"`
	Status        int      `json:"status"`
	TS            int64    `json:"ts"`
	UserAgent     string   `json:"userAgent"`
	UserID        string   `json:"userId"`
}

// Song is one song metadata record. Keys match staging column names.
type Song struct {
	NumSongs        int      `json:"num_songs"`
	ArtistID        string   `json:"artist_id"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
	ArtistLocation  string   `json:"artist_location"`
	ArtistName      string   `json:"artist_name"`
	SongID          string   `json:"song_id"`
	Title           string   `json:"title"`
	Duration        float64  `json:"duration"`
	Year            int      `json:"year"`
}

// EventJSONPaths maps event keys onto staging_events columns in order.
var EventJSONPaths = []string{
	"$['artist']",
	"$['auth']",
	"$['firstName']",
	"$['gender']",
	"$['itemInSession']",
	"$['lastName']",
	"$['length']",
	"$['level']",
	"$['location']",
	"$['method']",
	"$['page']",
	"$['registration']",
	"$['sessionId']",
	"$['song']",
	"$['status']",
	"$['ts']",
	"$['userAgent']",
	"$['userId']",
}

// DatasetBuilder provides a fluent API for building source datasets.
type DatasetBuilder struct {
	events []Event
	songs  []Song
}

// NewDataset creates an empty dataset.
func NewDataset() *DatasetBuilder {
	return &DatasetBuilder{}
}

// AddEvent appends an event record.
func (b *DatasetBuilder) AddEvent(e Event) *DatasetBuilder {
	b.events = append(b.events, e)
	return b
}

// AddSong appends a song record.
func (b *DatasetBuilder) AddSong(s Song) *DatasetBuilder {
	b.songs = append(b.songs, s)
	return b
}

// Play appends a NextSong event for user playing song at ts (epoch ms).
func (b *DatasetBuilder) Play(user User, song Song, sessionID int, ts int64) *DatasetBuilder {
	return b.AddEvent(Event{
		Artist:        Ptr(song.ArtistName),
		Auth:          "Logged In",
		FirstName:     user.FirstName,
		Gender:        user.Gender,
		ItemInSession: len(b.events),
		LastName:      user.LastName,
		Length:        Ptr(song.Duration),
		Level:         user.Level,
		Location:      user.Location,
		Method:        "PUT",
		Page:          "NextSong",
		Registration:  1540919166796,
		SessionID:     sessionID,
		Song:          Ptr(song.Title),
		Status:        200,
		TS:            ts,
		UserAgent:     user.UserAgent,
		UserID:        fmt.Sprint(user.ID),
	})
}

// User describes the listener fields repeated on every event.
type User struct {
	ID        int
	FirstName string
	LastName  string
	Gender    string
	Level     string
	Location  string
	UserAgent string
}

// Events returns the events added so far.
func (b *DatasetBuilder) Events() []Event { return b.events }

// Songs returns the songs added so far.
func (b *DatasetBuilder) Songs() []Song { return b.songs }

// Write lays the dataset out under dir and returns Sources pointing at it.
func (b *DatasetBuilder) Write(dir string) (songplays.Sources, error) {
	sources := songplays.Sources{
		LogData:     filepath.Join(dir, "log_data"),
		SongData:    filepath.Join(dir, "song_data"),
		LogJSONPath: filepath.Join(dir, "log_json_path.json"),
	}

	if err := writeLines(filepath.Join(sources.LogData, "2018", "11", "2018-11-01-events.json"), b.events); err != nil {
		return songplays.Sources{}, err
	}
	for _, s := range b.songs {
		name := s.SongID + ".json"
		if err := writeLines(filepath.Join(sources.SongData, "A", "A", name), []Song{s}); err != nil {
			return songplays.Sources{}, err
		}
	}

	desc, err := json.MarshalIndent(map[string][]string{"jsonpaths": EventJSONPaths}, "", "  ")
	if err != nil {
		return songplays.Sources{}, err
	}
	if err := os.WriteFile(sources.LogJSONPath, desc, 0o644); err != nil {
		return songplays.Sources{}, fmt.Errorf("write %s: %w", sources.LogJSONPath, err)
	}
	return sources, nil
}

func writeLines[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			f.Close()
			return fmt.Errorf("encode %s: %w", path, err)
		}
	}
	return f.Close()
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// RoundTripStart is the timestamp of the first RoundTrip event:
// 2018-11-01 12:00:00 UTC, a Thursday in ISO week 44.
const RoundTripStart int64 = 1541073600000

var (
	RoundTripUserFree = User{ID: 8, FirstName: "Kaylee", LastName: "Summers", Gender: "F", Level: "free",
		Location: "Phoenix-Mesa-Scottsdale, AZ", UserAgent: "Mozilla/5.0 (Windows NT 6.1; WOW64)"}
	RoundTripUserPaid = User{ID: 10, FirstName: "Sylvie", LastName: "Cruz", Gender: "F", Level: "paid",
		Location: "Washington-Arlington-Alexandria, DC-VA-MD-WV", UserAgent: "Mozilla/5.0 (Macintosh)"}

	RoundTripSongA = Song{NumSongs: 1, ArtistID: "ARJIE2Y1187B994AB7", ArtistLocation: "", ArtistName: "Line Renaud",
		SongID: "SOUPIRU12A6D4FA1E1", Title: "Der Kleine Dompfaff", Duration: 152.92036, Year: 0}
	RoundTripSongB = Song{NumSongs: 1, ArtistID: "AR8IEZO1187B99055E", ArtistLatitude: Ptr(40.71455),
		ArtistLongitude: Ptr(-74.00712), ArtistLocation: "New York, NY", ArtistName: "Marc Shaiman",
		SongID: "SOINLJW12A8C13314C", Title: "City Slickers", Duration: 149.86404, Year: 2008}
)

// RoundTrip returns three plays by two users: two match a song in song data,
// the third names a song that is not in the catalogue.
func RoundTrip() *DatasetBuilder {
	unknown := Song{ArtistName: "Unknown Artist", Title: "Not In Catalogue", Duration: 201.5}
	return NewDataset().
		AddSong(RoundTripSongA).
		AddSong(RoundTripSongB).
		Play(RoundTripUserFree, RoundTripSongA, 139, RoundTripStart).
		Play(RoundTripUserFree, unknown, 139, RoundTripStart+60_000).
		Play(RoundTripUserPaid, RoundTripSongB, 9, RoundTripStart+120_000)
}
