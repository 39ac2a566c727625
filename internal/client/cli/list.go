package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/storyshare/internal/client/api"
	"github.com/dmitrijs2005/storyshare/internal/client/models"
	"github.com/dmitrijs2005/storyshare/internal/client/services"
)

// List fetches a page of stories from the server and prints it. An optional
// argument selects the page number.
func (a *App) List(ctx context.Context, args []string) error {
	p := api.ListParams{}
	if len(args) > 0 {
		page, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("usage: list [page]")
		}
		p.Page = page
	}

	list, err := a.stories.List(ctx, p)
	if err != nil {
		return err
	}

	a.lastList = list
	for i, s := range list {
		printlnFn(fmt.Sprintf("%2d. %s: %s (%s)", i+1, s.Name, firstLine(s.Description), s.CreatedAt.Format("2006-01-02")))
	}
	if len(list) == 0 {
		printlnFn("No stories on this page.")
	}
	return nil
}

// Favorites prints the locally saved stories. Optional arguments select the
// sort field (createdAt, name, description) and order (asc, desc).
func (a *App) Favorites(ctx context.Context, args []string) error {
	recs, err := a.stories.Favorites(ctx)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		field := args[0]
		order := "asc"
		if len(args) > 1 {
			order = args[1]
		}
		services.SortRecords(recs, field, order)
	}

	printRecords(recs)
	return nil
}

// Save stores a story from the last listed page locally, by its position in
// that listing.
func (a *App) Save(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: save <n> (run 'list' first)")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(a.lastList) {
		return fmt.Errorf("no story %s in the last listing", args[0])
	}

	story := a.lastList[n-1]
	if err := a.stories.SaveFavorite(ctx, story); err != nil {
		return err
	}
	printlnFn("Saved", story.Name)
	return nil
}

// Delete removes a locally saved story by id.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: delete <id>")
	}
	if err := a.stories.Delete(ctx, args[0]); err != nil {
		return err
	}
	printlnFn("Deleted.")
	return nil
}

// Search filters locally saved stories by keyword.
func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: search <keyword>")
	}

	recs, err := a.stories.Search(ctx, args[0])
	if err != nil {
		return err
	}
	printRecords(recs)
	return nil
}

// Sync replays queued offline stories against the server.
func (a *App) Sync(ctx context.Context) error {
	report, err := a.sync.SyncAll(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Sync finished: %d shared, %d failed.", report.SuccessCount, report.FailureCount))
	return nil
}

func printRecords(recs []models.StoryRecord) {
	for _, r := range recs {
		marker := " "
		if !r.Synced {
			marker = "*"
		}
		printlnFn(fmt.Sprintf("%s %s  %s: %s (%s)", marker, r.ID, r.Name, firstLine(r.Description), r.CreatedAt.Format("2006-01-02")))
	}
	if len(recs) == 0 {
		printlnFn("Nothing saved yet.")
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
