package cli

import (
	"context"
	"errors"
	"os"

	"github.com/dmitrijs2005/storyshare/internal/client/services"
)

// Add assembles a new story interactively and submits it. When the server is
// unreachable the story is queued locally and replayed by the next sync pass.
func (a *App) Add(ctx context.Context) error {
	description, err := GetMultiline(a.reader, "Enter description", os.Stdout)
	if err != nil {
		return err
	}

	photoPath, err := getSimpleText(a.reader, "Enter photo path", os.Stdout)
	if err != nil {
		return err
	}
	photo, err := os.ReadFile(photoPath)
	if err != nil {
		return err
	}

	lat, err := GetOptionalFloat(a.reader, "Latitude", os.Stdout)
	if err != nil {
		return err
	}
	var lon *float64
	if lat != nil {
		// Coordinates come in pairs; a latitude without a longitude is useless.
		lon, err = GetOptionalFloat(a.reader, "Longitude", os.Stdout)
		if err != nil {
			return err
		}
		if lon == nil {
			return errors.New("longitude is required when latitude is given")
		}
	}

	status, err := a.sync.Submit(ctx, services.Submission{
		Description: description,
		Photo:       photo,
		PhotoRef:    photoPath,
		Lat:         lat,
		Lon:         lon,
	})
	if err != nil {
		return err
	}

	switch status {
	case services.Submitted:
		printlnFn("Story shared!")
	case services.SavedOffline:
		printlnFn("You are offline; the story was saved and will be shared once the connection is back.")
	}
	return nil
}
