package tui

import (
	"errors"
	"fmt"

	"github.com/pders01/newsroom/internal/browse"
	"github.com/pders01/newsroom/internal/library"
	"github.com/pders01/newsroom/internal/newsapi"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// userMessage picks the text shown for err in the status bar.
func userMessage(err error) string {
	var perr *library.PersistenceError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, newsapi.ErrNoAPIKey):
		return MsgNeedAPIKey
	case errors.As(err, &perr):
		return "Saved in this session only: " + perr.Err.Error()
	case errors.Is(err, browse.ErrSuperseded):
		return ""
	default:
		return newsapi.UserMessage(err)
	}
}
