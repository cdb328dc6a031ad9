package apimodel

// Ref names a catalog object by its key (a spotify uri) and display name
type Ref struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type Track struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Album      Ref    `json:"album"`
	Artists    []Ref  `json:"artists"`
	Duration   int    `json:"duration"`
	Popularity int    `json:"popularity"`
	Image      string `json:"image,omitempty"`
}

type Album struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Year   int    `json:"year"`
	Type   string `json:"type"`
	Image  string `json:"image,omitempty"`
}

type Artist struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type SearchResult struct {
	Tracks  []Track  `json:"tracks,omitempty"`
	Albums  []Album  `json:"albums,omitempty"`
	Artists []Artist `json:"artists,omitempty"`
}

type ArtistView struct {
	Artist Artist  `json:"artist"`
	Albums []Album `json:"albums"`
	Tracks []Track `json:"tracks"`
}

type AlbumView struct {
	Album  Album   `json:"album"`
	Tracks []Track `json:"tracks"`
}
