package services

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/spad0604/robot-delivery/internal/domain"
)

// ErrCoordinatesNotFound is returned when a map link carries no
// recognizable coordinate encoding.
var ErrCoordinatesNotFound = errors.New("no coordinates found in map URL")

var (
	atPattern    = regexp.MustCompile(`/@(-?\d+\.\d+),(-?\d+\.\d+)`)
	placePattern = regexp.MustCompile(`/place/[^/]+/@(-?\d+\.\d+),(-?\d+\.\d+)`)
	latParam     = regexp.MustCompile(`!3d(-?\d+\.\d+)`)
	lngParam     = regexp.MustCompile(`!4d(-?\d+\.\d+)`)
)

// ResolveMapURL extracts the destination encoded in a map-service link.
//
// Shapes are tried in a fixed priority order and the first match wins:
//  1. a "/@<lat>,<lng>" path segment
//  2. a "/place/<name>/@<lat>,<lng>" segment
//  3. "!3d<lat>" together with "!4d<lng>" data parameters
func ResolveMapURL(url string) (domain.Coordinates, error) {
	if m := atPattern.FindStringSubmatch(url); m != nil {
		return parsePair(m[1], m[2])
	}

	// Every "/place/<name>/@" link also matches the bare "/@" shape, so
	// this branch only fires if the shapes above are ever narrowed.
	if m := placePattern.FindStringSubmatch(url); m != nil {
		return parsePair(m[1], m[2])
	}

	lat := latParam.FindStringSubmatch(url)
	lng := lngParam.FindStringSubmatch(url)
	if lat != nil && lng != nil {
		return parsePair(lat[1], lng[1])
	}

	return domain.Coordinates{}, ErrCoordinatesNotFound
}

func parsePair(latText, lngText string) (domain.Coordinates, error) {
	lat, err := strconv.ParseFloat(latText, 64)
	if err != nil {
		return domain.Coordinates{}, ErrCoordinatesNotFound
	}
	lng, err := strconv.ParseFloat(lngText, 64)
	if err != nil {
		return domain.Coordinates{}, ErrCoordinatesNotFound
	}
	return domain.Coordinates{Lat: lat, Lon: lng}, nil
}
