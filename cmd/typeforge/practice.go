package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeforge/internal/config"
	"github.com/verte-zerg/typeforge/internal/model"
	"github.com/verte-zerg/typeforge/internal/session"
	"github.com/verte-zerg/typeforge/internal/store"
	"github.com/verte-zerg/typeforge/internal/submit"
	"github.com/verte-zerg/typeforge/internal/textsource"
	"github.com/verte-zerg/typeforge/internal/tui"
)

// recentLimit is how many saved results seed the practice footer.
const recentLimit = 20

var (
	practiceName     string
	practiceDuration int
	practiceSource   string
	practiceLang     string
	practiceWords    int
	practiceCaps     float64
	practicePunct    float64
	practicePunctSet string
)

func newPracticeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Run a timed typing test",
		Args:  cobra.NoArgs,
		RunE:  runPracticeCmd,
	}
	addPracticeFlags(cmd)
	return cmd
}

func addPracticeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&practiceName, "name", "", "player name results are saved under")
	cmd.Flags().IntVar(&practiceDuration, "duration", model.DefaultDurationSeconds, "test length in seconds (15, 30, 60, 120)")
	cmd.Flags().StringVar(&practiceSource, "source", string(model.TextSourceWords), "text source (words or quote)")
	cmd.Flags().StringVar(&practiceLang, "lang", config.DefaultLang, "word list language")
	cmd.Flags().IntVar(&practiceWords, "words", config.DefaultWords, "words per prompt")
	cmd.Flags().Float64Var(&practiceCaps, "caps", 0, "probability of capitalized first letter (0-1)")
	cmd.Flags().Float64Var(&practicePunct, "punct", 0, "punctuation probability per word (0-1)")
	cmd.Flags().StringVar(&practicePunctSet, "punct-set", config.DefaultPunctSet, "punctuation set")
}

// applyPracticeFlags overrides resolved settings with explicitly set flags.
func applyPracticeFlags(cmd *cobra.Command, p *config.Practice) {
	applyStringFlag(cmd, "name", &p.Name, practiceName)
	applyIntFlag(cmd, "duration", &p.DurationSeconds, practiceDuration)
	if cmd.Flags().Changed("source") {
		p.Source = model.TextSource(strings.ToLower(strings.TrimSpace(practiceSource)))
	}
	applyStringFlag(cmd, "lang", &p.Lang, practiceLang)
	applyIntFlag(cmd, "words", &p.Words, practiceWords)
	applyFloatFlag(cmd, "caps", &p.CapsPct, practiceCaps)
	applyFloatFlag(cmd, "punct", &p.PunctPct, practicePunct)
	applyStringFlag(cmd, "punct-set", &p.PunctSet, practicePunctSet)
}

// localEmail derives the account key for a local player name.
func localEmail(name string) string {
	slug := strings.Join(strings.Fields(strings.ToLower(name)), ".")
	if slug == "" {
		slug = "player"
	}
	return store.NormalizeEmail(slug + "@localhost")
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	applyPracticeFlags(cmd, &settings.Practice)
	if err := settings.Validate(); err != nil {
		return err
	}
	pr := settings.Practice
	if !textsource.ValidWordCount(pr.Words) {
		return fmt.Errorf("--words must be between %d and %d", textsource.MinWordCount, textsource.MaxWordCount)
	}

	st, err := openStore(cmd, settings)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	user, err := st.EnsureUser(ctx, localEmail(pr.Name), pr.Name)
	if err != nil {
		return fmt.Errorf("failed to load player: %w", err)
	}
	recent, err := st.ListUserResults(ctx, model.StatsConfig{UserID: user.ID, Limit: recentLimit})
	if err != nil {
		logErrf("failed to load recent results: %v\n", err)
	}

	m := tui.NewModel(tui.Options{
		Session: session.Config{
			Mode:            model.DefaultMode,
			DurationSeconds: pr.DurationSeconds,
			Source:          pr.Source,
		},
		Prompt: textsource.Options{
			WordCount: pr.Words,
			Lang:      pr.Lang,
			Decoration: textsource.Decoration{
				CapsPct:  pr.CapsPct,
				PunctPct: pr.PunctPct,
				PunctSet: []rune(pr.PunctSet),
			},
		},
		Identity:  user.Identity(),
		Prompts:   textsource.NewProvider(st),
		Submitter: submit.NewService(settings.Policy, st),
		Recent:    recent,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
