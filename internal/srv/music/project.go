package music

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jypelle/sbox/apimodel"
	"github.com/zmb3/spotify/v2"
)

// parseKey accepts a spotify uri, an open.spotify.com link or a bare id of the given kind
func parseKey(key string, kind string) (spotify.ID, error) {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "spotify:") {
		parts := strings.Split(key, ":")
		if len(parts) != 3 || parts[1] != kind || parts[2] == "" {
			return "", fmt.Errorf("%q is not a %s uri", key, kind)
		}
		return spotify.ID(parts[2]), nil
	}
	if strings.HasPrefix(key, "https://") || strings.HasPrefix(key, "http://") {
		u, err := url.Parse(key)
		if err != nil {
			return "", err
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if u.Hostname() != "open.spotify.com" || len(parts) < 2 || parts[len(parts)-2] != kind {
			return "", fmt.Errorf("%q is not a %s link", key, kind)
		}
		return spotify.ID(parts[len(parts)-1]), nil
	}
	if key == "" || strings.ContainsAny(key, ":/ ") {
		return "", fmt.Errorf("%q is not a %s id", key, kind)
	}
	return spotify.ID(key), nil
}

func trackURI(trackId spotify.ID) string {
	return "spotify:track:" + string(trackId)
}

func firstImage(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func releaseYear(releaseDate string) int {
	if len(releaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

func projectArtistRefs(artists []spotify.SimpleArtist) []apimodel.Ref {
	refs := make([]apimodel.Ref, 0, len(artists))
	for _, artist := range artists {
		refs = append(refs, apimodel.Ref{Key: string(artist.URI), Name: artist.Name})
	}
	return refs
}

func projectTrack(track *spotify.FullTrack) apimodel.Track {
	return apimodel.Track{
		Key:        string(track.URI),
		Name:       track.Name,
		Album:      apimodel.Ref{Key: string(track.Album.URI), Name: track.Album.Name},
		Artists:    projectArtistRefs(track.Artists),
		Duration:   int(track.Duration),
		Popularity: int(track.Popularity),
		Image:      firstImage(track.Album.Images),
	}
}

// projectAlbumTrack completes a track listed by an album with the album it belongs to
func projectAlbumTrack(track spotify.SimpleTrack, album spotify.SimpleAlbum) apimodel.Track {
	return apimodel.Track{
		Key:      string(track.URI),
		Name:     track.Name,
		Album:    apimodel.Ref{Key: string(album.URI), Name: album.Name},
		Artists:  projectArtistRefs(track.Artists),
		Duration: int(track.Duration),
		Image:    firstImage(album.Images),
	}
}

func projectAlbum(album spotify.SimpleAlbum) apimodel.Album {
	artist := ""
	if len(album.Artists) > 0 {
		artist = album.Artists[0].Name
	}
	return apimodel.Album{
		Key:    string(album.URI),
		Name:   album.Name,
		Artist: artist,
		Year:   releaseYear(album.ReleaseDate),
		Type:   album.AlbumType,
		Image:  firstImage(album.Images),
	}
}

func projectArtist(artist spotify.FullArtist) apimodel.Artist {
	return apimodel.Artist{
		Key:   string(artist.URI),
		Name:  artist.Name,
		Image: firstImage(artist.Images),
	}
}

// projectPlaylistItem keeps one entry per playlist position, even for items that are not tracks
func projectPlaylistItem(item spotify.PlaylistItem) apimodel.Track {
	if item.Track.Track != nil {
		return projectTrack(item.Track.Track)
	}
	if item.Track.Episode != nil {
		return apimodel.Track{Key: string(item.Track.Episode.URI), Name: item.Track.Episode.Name}
	}
	return apimodel.Track{Name: "unavailable"}
}
