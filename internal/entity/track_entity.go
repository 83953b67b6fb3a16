package entity

// Track is an immutable reference to a library item. It is created once per
// session from the library fetch and never mutated afterwards.
type Track struct {
	Id            string
	Name          string
	Artist        string
	Album         string
	Popularity    *int
	DurationMs    int
	ReleaseDate   string
	Explicit      bool
	AlbumImageURL *string
	PreviewURL    *string
	Genres        []string
}
