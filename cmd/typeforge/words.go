package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeforge/internal/auth"
	"github.com/verte-zerg/typeforge/internal/config"
	"github.com/verte-zerg/typeforge/internal/model"
	"github.com/verte-zerg/typeforge/internal/store"
	"github.com/verte-zerg/typeforge/internal/textsource"
	"github.com/verte-zerg/typeforge/internal/wordlist"
)

const demoPassword = "demo123"

var (
	wordsLang string
	seedDemo  bool
)

func newWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Manage stored words and quotes",
	}

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Load a word list file (one word per line) into the store",
		Long:  "Load a word list file into the store. Without a file argument the list is read from\n$XDG_CONFIG_HOME/typeforge/wordlists/<lang>.txt.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWordsImportCmd,
	}
	importCmd.Flags().StringVar(&wordsLang, "lang", config.DefaultLang, "language code")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the built-in words and quotes",
		Args:  cobra.NoArgs,
		RunE:  runWordsSeedCmd,
	}
	seedCmd.Flags().BoolVar(&seedDemo, "demo", false, "also create demo accounts (password "+demoPassword+")")

	cmd.AddCommand(importCmd, seedCmd)
	return cmd
}

func runWordsImportCmd(cmd *cobra.Command, args []string) error {
	lang := strings.ToLower(strings.TrimSpace(wordsLang))
	if lang == "" {
		return fmt.Errorf("--lang must not be empty")
	}
	path := config.DefaultWordListPath(lang)
	if len(args) == 1 {
		path = args[0]
	}
	words, err := wordlist.LoadWords(path, lang)
	if err != nil {
		return fmt.Errorf("failed to load word list: %w", err)
	}
	if len(words) == 0 {
		return fmt.Errorf("no usable words in %s", path)
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := openStore(cmd, settings)
	if err != nil {
		return err
	}
	defer closeStore(st)

	inserted, err := st.SeedWords(cmd.Context(), lang, words)
	if err != nil {
		return fmt.Errorf("failed to store words: %w", err)
	}
	logErrf("Imported %d new word(s) for %s (%d read)\n", inserted, lang, len(words))
	return nil
}

func runWordsSeedCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := openStore(cmd, settings)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	words, err := st.SeedWords(ctx, config.DefaultLang, textsource.BuiltinWords)
	if err != nil {
		return fmt.Errorf("failed to seed words: %w", err)
	}
	quotes, err := st.SeedQuotes(ctx, textsource.BuiltinQuotes)
	if err != nil {
		return fmt.Errorf("failed to seed quotes: %w", err)
	}
	logErrf("Seeded %d word(s) and %d quote(s)\n", words, quotes)

	if seedDemo {
		return seedDemoAccounts(cmd, st)
	}
	return nil
}

// seedDemoAccounts creates a premium and a free account; the premium one
// follows the free one so the friends leaderboard has content.
func seedDemoAccounts(cmd *cobra.Command, st *store.Store) error {
	ctx := cmd.Context()
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}
	accounts := []model.User{
		{Email: "pro@demo.typeforge.dev", Name: "Demo Pro", PasswordHash: hash, Subscription: model.SubscriptionActive},
		{Email: "free@demo.typeforge.dev", Name: "Demo Free", PasswordHash: hash, Subscription: model.SubscriptionNone},
	}
	ids := make([]string, len(accounts))
	for i, acc := range accounts {
		u, err := st.CreateUser(ctx, acc)
		if errors.Is(err, store.ErrConflict) {
			u, err = st.UserByEmail(ctx, acc.Email)
		}
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", acc.Email, err)
		}
		ids[i] = u.ID
		logErrf("Demo account %s\n", acc.Email)
	}
	if err := st.Follow(ctx, ids[0], ids[1]); err != nil {
		return fmt.Errorf("failed to create demo follow: %w", err)
	}
	return nil
}
