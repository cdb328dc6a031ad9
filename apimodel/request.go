package apimodel

import "strings"

// TrackRequest is the payload of playlist add and remove
type TrackRequest struct {
	Key string `json:"key"`
	Id  string `json:"id"`
}

func (r *TrackRequest) Validate() *ErrorMessage {
	r.Key = strings.TrimSpace(r.Key)
	r.Id = strings.TrimSpace(r.Id)
	if r.Key == "" {
		return &MissingKeyErrorMessage
	}
	if r.Id == "" {
		return &MissingIdErrorMessage
	}
	return nil
}

// ContributorRequest carries an optional or required contributor id
type ContributorRequest struct {
	Id string `json:"id"`
}

func (r *ContributorRequest) Validate() *ErrorMessage {
	r.Id = strings.TrimSpace(r.Id)
	if r.Id == "" {
		return &MissingIdErrorMessage
	}
	return nil
}

// CatalogRequest looks up an artist or an album
type CatalogRequest struct {
	Key string `json:"key"`
}

func (r *CatalogRequest) Validate() *ErrorMessage {
	r.Key = strings.TrimSpace(r.Key)
	if r.Key == "" {
		return &MissingKeyErrorMessage
	}
	return nil
}

type SearchRequest struct {
	Query     string `json:"q"`
	NoTracks  bool   `json:"notracks"`
	NoAlbums  bool   `json:"noalbums"`
	NoArtists bool   `json:"noartists"`
}

func (r *SearchRequest) Validate() *ErrorMessage {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return &MissingQueryErrorMessage
	}
	return nil
}
