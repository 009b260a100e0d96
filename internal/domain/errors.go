package domain

import "errors"

var (
	ErrGeocodingUnavailable     = errors.New("geocoding unavailable")
	ErrGeocodingNoMatch         = errors.New("geocoding: no match")
	ErrArticleSearchUnavailable = errors.New("article search unavailable")
	ErrIncidentNotFound         = errors.New("incident not found")
	ErrInvalidIncident          = errors.New("invalid incident")
)
