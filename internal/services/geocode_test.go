package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spad0604/robot-delivery/internal/domain"
)

func TestResolveMapURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want domain.Coordinates
	}{
		{
			name: "place link with data params",
			url:  "https://www.google.com/maps/place/21%C2%B002'03.5%22N+105%C2%B047'44.9%22E/@21.034317,105.7932251,17z/data=!3m1!4b1!4m4!3m3!8m2!3d21.034317!4d105.7932251",
			want: domain.Coordinates{Lat: 21.034317, Lon: 105.7932251},
		},
		{
			name: "bare at segment",
			url:  "https://www.google.com/maps/@21.0285,105.8542,17z",
			want: domain.Coordinates{Lat: 21.0285, Lon: 105.8542},
		},
		{
			name: "at segment wins over data params",
			url:  "https://www.google.com/maps/place/X/@21.0285,105.8542,17z/data=!3d21.5!4d105.5",
			want: domain.Coordinates{Lat: 21.0285, Lon: 105.8542},
		},
		{
			name: "data params only",
			url:  "https://www.google.com/maps/place/X/data=!4m2!3d21.0277!4d105.8355",
			want: domain.Coordinates{Lat: 21.0277, Lon: 105.8355},
		},
		{
			name: "negative coordinates",
			url:  "https://www.google.com/maps/@-33.8688,-151.2093,12z",
			want: domain.Coordinates{Lat: -33.8688, Lon: -151.2093},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveMapURL(tc.url)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveMapURLNotFound(t *testing.T) {
	urls := []string{
		"",
		"https://example.com/somewhere",
		"https://www.google.com/maps/place/X/data=!3d21.0277",
		"https://www.google.com/maps/@21,105,17z",
	}

	for _, u := range urls {
		_, err := ResolveMapURL(u)
		if !errors.Is(err, ErrCoordinatesNotFound) {
			t.Fatalf("ResolveMapURL(%q) err = %v, want ErrCoordinatesNotFound", u, err)
		}
	}
}
