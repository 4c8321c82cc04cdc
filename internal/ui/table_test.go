package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/playrelay/internal/models"
)

func TestHistoryTable(t *testing.T) {
	t.Run("Rows", func(t *testing.T) {
		plays := []models.Play{
			{TrackURI: "spotify:track:new", Outcome: models.OutcomeStarted, Status: 204, Attempts: 2, Refreshed: true, CreatedAt: time.Now()},
			{TrackURI: "spotify:track:old", Outcome: models.OutcomeNotAuthenticated, CreatedAt: time.Now().Add(-time.Minute)},
		}

		out := HistoryTable(plays)

		for _, want := range []string{"Track", "spotify:track:new", "spotify:track:old", "204", "yes", "2 plays"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in table:\n%s", want, out)
			}
		}
		if strings.Index(out, "spotify:track:new") > strings.Index(out, "spotify:track:old") {
			t.Error("expected input order to be preserved")
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if out := HistoryTable(nil); !strings.Contains(out, "0 plays") {
			t.Errorf("expected empty caption, got:\n%s", out)
		}
	})
}

func TestStyles(t *testing.T) {
	for name, fn := range map[string]func(string) string{
		"Title": Title, "Success": Success, "Error": Error, "Warn": Warn, "Help": Help,
	} {
		t.Run(name, func(t *testing.T) {
			if out := fn("hello"); !strings.Contains(out, "hello") {
				t.Errorf("expected text to survive styling, got %q", out)
			}
		})
	}
}
