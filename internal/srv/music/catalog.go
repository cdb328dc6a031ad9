package music

import (
	"context"
	"fmt"

	"github.com/jypelle/sbox/apimodel"
	"github.com/jypelle/sbox/internal/srv/queue"
	"github.com/zmb3/spotify/v2"
)

const searchLimit = 10

// Catalog browses the Spotify catalog and projects the results into api records
type Catalog struct {
	session *Session
}

func NewCatalog(session *Session) *Catalog {
	return &Catalog{session: session}
}

func (c *Catalog) Search(ctx context.Context, request apimodel.SearchRequest) (apimodel.SearchResult, error) {
	var searchType spotify.SearchType
	if !request.NoTracks {
		searchType |= spotify.SearchTypeTrack
	}
	if !request.NoAlbums {
		searchType |= spotify.SearchTypeAlbum
	}
	if !request.NoArtists {
		searchType |= spotify.SearchTypeArtist
	}
	result := apimodel.SearchResult{}
	if searchType == 0 {
		return result, nil
	}

	var searchResult *spotify.SearchResult
	err := c.session.call(ctx, func(ctx context.Context, client *spotify.Client) (err error) {
		options := []spotify.RequestOption{spotify.Limit(searchLimit)}
		if c.session.market != "" {
			options = append(options, spotify.Market(c.session.market))
		}
		searchResult, err = client.Search(ctx, request.Query, searchType, options...)
		return err
	})
	if err != nil {
		return result, fmt.Errorf("search %q: %w", request.Query, err)
	}

	if searchResult.Tracks != nil {
		result.Tracks = make([]apimodel.Track, 0, len(searchResult.Tracks.Tracks))
		for i := range searchResult.Tracks.Tracks {
			result.Tracks = append(result.Tracks, projectTrack(&searchResult.Tracks.Tracks[i]))
		}
	}
	if searchResult.Albums != nil {
		result.Albums = make([]apimodel.Album, 0, len(searchResult.Albums.Albums))
		for _, album := range searchResult.Albums.Albums {
			result.Albums = append(result.Albums, projectAlbum(album))
		}
	}
	if searchResult.Artists != nil {
		result.Artists = make([]apimodel.Artist, 0, len(searchResult.Artists.Artists))
		for _, artist := range searchResult.Artists.Artists {
			result.Artists = append(result.Artists, projectArtist(artist))
		}
	}
	return result, nil
}

// Artist returns an artist with their albums and top tracks
func (c *Catalog) Artist(ctx context.Context, key string) (apimodel.ArtistView, error) {
	artistId, err := parseKey(key, "artist")
	if err != nil {
		return apimodel.ArtistView{}, fmt.Errorf("%w: %w", queue.ErrUnknownKey, err)
	}

	var (
		fullArtist *spotify.FullArtist
		albumPage  *spotify.SimpleAlbumPage
		topTracks  []spotify.FullTrack
	)
	err = c.session.call(ctx, func(ctx context.Context, client *spotify.Client) (err error) {
		fullArtist, err = client.GetArtist(ctx, artistId)
		return err
	})
	if err == nil {
		err = c.session.call(ctx, func(ctx context.Context, client *spotify.Client) (err error) {
			albumPage, err = client.GetArtistAlbums(ctx, artistId,
				[]spotify.AlbumType{spotify.AlbumTypeAlbum, spotify.AlbumTypeSingle}, spotify.Limit(50))
			return err
		})
	}
	if err == nil {
		err = c.session.call(ctx, func(ctx context.Context, client *spotify.Client) (err error) {
			topTracks, err = client.GetArtistsTopTracks(ctx, artistId, c.country())
			return err
		})
	}
	if err != nil {
		if isClientError(err) {
			return apimodel.ArtistView{}, fmt.Errorf("%w: %s", queue.ErrUnknownKey, key)
		}
		return apimodel.ArtistView{}, fmt.Errorf("get artist %s: %w", key, err)
	}

	view := apimodel.ArtistView{
		Artist: projectArtist(*fullArtist),
		Albums: make([]apimodel.Album, 0, len(albumPage.Albums)),
		Tracks: make([]apimodel.Track, 0, len(topTracks)),
	}
	for _, album := range albumPage.Albums {
		view.Albums = append(view.Albums, projectAlbum(album))
	}
	for i := range topTracks {
		view.Tracks = append(view.Tracks, projectTrack(&topTracks[i]))
	}
	return view, nil
}

// Album returns an album with its tracks
func (c *Catalog) Album(ctx context.Context, key string) (apimodel.AlbumView, error) {
	albumId, err := parseKey(key, "album")
	if err != nil {
		return apimodel.AlbumView{}, fmt.Errorf("%w: %w", queue.ErrUnknownKey, err)
	}

	var fullAlbum *spotify.FullAlbum
	err = c.session.call(ctx, func(ctx context.Context, client *spotify.Client) (err error) {
		fullAlbum, err = client.GetAlbum(ctx, albumId)
		return err
	})
	if err != nil {
		if isClientError(err) {
			return apimodel.AlbumView{}, fmt.Errorf("%w: %s", queue.ErrUnknownKey, key)
		}
		return apimodel.AlbumView{}, fmt.Errorf("get album %s: %w", key, err)
	}

	view := apimodel.AlbumView{
		Album:  projectAlbum(fullAlbum.SimpleAlbum),
		Tracks: make([]apimodel.Track, 0, len(fullAlbum.Tracks.Tracks)),
	}
	for _, track := range fullAlbum.Tracks.Tracks {
		view.Tracks = append(view.Tracks, projectAlbumTrack(track, fullAlbum.SimpleAlbum))
	}
	return view, nil
}

func (c *Catalog) country() string {
	if c.session.market == "" {
		return "US"
	}
	return c.session.market
}
