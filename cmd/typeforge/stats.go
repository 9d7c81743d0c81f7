package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typeforge/internal/leaderboard"
	"github.com/verte-zerg/typeforge/internal/model"
	"github.com/verte-zerg/typeforge/internal/stats"
	"github.com/verte-zerg/typeforge/internal/statsui"
	"github.com/verte-zerg/typeforge/internal/store"
)

var (
	statsName   string
	statsPlain  bool
	statsExport string

	boardMode     string
	boardDuration int
	boardSource   string
	boardWindow   string
	boardScope    string
	boardName     string
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the practice dashboard",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsName, "name", "", "player name (defaults to the configured name)")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print the dashboard instead of opening the TUI")
	cmd.Flags().StringVar(&statsExport, "export", "", "write all results as CSV to a file ('-' for stdout)")
	return cmd
}

// localPlayer resolves an existing local player by name.
func localPlayer(cmd *cobra.Command, st *store.Store, name string) (model.User, error) {
	u, err := st.UserByEmail(cmd.Context(), localEmail(name))
	if errors.Is(err, store.ErrNotFound) {
		return model.User{}, fmt.Errorf("no saved results for player %q yet", name)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to load player: %w", err)
	}
	return u, nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	applyStringFlag(cmd, "name", &settings.Practice.Name, statsName)

	st, err := openStore(cmd, settings)
	if err != nil {
		return err
	}
	defer closeStore(st)

	user, err := localPlayer(cmd, st, settings.Practice.Name)
	if err != nil {
		return err
	}
	cfg := model.StatsConfig{UserID: user.ID}

	if statsExport != "" {
		return exportResults(cmd, st, user.ID, statsExport)
	}
	if statsPlain {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		out := cmd.OutOrStdout()
		if err := stats.RenderSummary(out, report.Dashboard); err != nil {
			return err
		}
		return stats.RenderHistory(out, report.Results)
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func exportResults(cmd *cobra.Command, st *store.Store, userID, path string) (err error) {
	results, err := st.ExportUserResults(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	var w io.Writer = cmd.OutOrStdout()
	if path != "-" {
		f, cerr := os.Create(path)
		if cerr != nil {
			return fmt.Errorf("failed to create export: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}
	if err := stats.WriteCSV(w, results); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if path != "-" {
		logErrf("Wrote %d result(s) to %s\n", len(results), path)
	}
	return nil
}

func newLeaderboardCmd() *cobra.Command {
	def := model.DefaultLeaderboardQuery()
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the ranked leaderboard",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().StringVar(&boardMode, "mode", def.Mode, "test mode")
	cmd.Flags().IntVar(&boardDuration, "duration", def.DurationSeconds, "test length in seconds (15, 30, 60, 120)")
	cmd.Flags().StringVar(&boardSource, "source", string(def.TextSource), "text source (words or quote)")
	cmd.Flags().StringVar(&boardWindow, "window", string(def.Window), "time window (daily, weekly or all)")
	cmd.Flags().StringVar(&boardScope, "scope", string(def.Scope), "scope (global or friends)")
	cmd.Flags().StringVar(&boardName, "name", "", "local player for the friends scope (defaults to the configured name)")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	q := model.LeaderboardQuery{Mode: boardMode, DurationSeconds: boardDuration}
	var err error
	if q.TextSource, err = model.ParseTextSource(boardSource); err != nil {
		return err
	}
	if q.Window, err = model.ParseWindow(boardWindow); err != nil {
		return err
	}
	if q.Scope, err = model.ParseScope(boardScope); err != nil {
		return err
	}
	if err := leaderboard.ValidateQuery(q); err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	applyStringFlag(cmd, "name", &settings.Practice.Name, boardName)

	st, err := openStore(cmd, settings)
	if err != nil {
		return err
	}
	defer closeStore(st)

	var viewer *model.Identity
	if q.Scope == model.ScopeFriends {
		u, err := localPlayer(cmd, st, settings.Practice.Name)
		if err != nil {
			return err
		}
		viewer = u.Identity()
	}

	board, err := leaderboard.NewService(st).Fetch(cmd.Context(), viewer, q)
	if err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}
	if board.Message != "" {
		logErrln(board.Message)
		return nil
	}
	return stats.RenderLeaderboard(cmd.OutOrStdout(), board.Entries, terminalWidth())
}

// terminalWidth returns the stdout width, or 0 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
