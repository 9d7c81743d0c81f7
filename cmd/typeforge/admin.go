package main

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeforge/internal/model"
)

var (
	flagReason string
	flagRemove bool

	premiumStatus string
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Moderation and account maintenance",
	}

	flagCmd := &cobra.Command{
		Use:   "flag <result-id>",
		Short: "Flag a result (hide it from leaderboards) or remove it",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdminFlagCmd,
	}
	flagCmd.Flags().StringVar(&flagReason, "reason", "", "reason recorded with the flag (4-240 characters)")
	flagCmd.Flags().BoolVar(&flagRemove, "remove", false, "delete the result instead of hiding it")

	premiumCmd := &cobra.Command{
		Use:   "premium <email>",
		Short: "Set a user's subscription status",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdminPremiumCmd,
	}
	premiumCmd.Flags().StringVar(&premiumStatus, "status", string(model.SubscriptionActive), "subscription status (none, active, trialing, past_due, canceled)")

	flagsCmd := &cobra.Command{
		Use:   "flags <result-id>",
		Short: "List moderation records for a result",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdminFlagsCmd,
	}

	cmd.AddCommand(flagCmd, flagsCmd, premiumCmd)
	return cmd
}

func runAdminFlagCmd(cmd *cobra.Command, args []string) error {
	if n := utf8.RuneCountInString(flagReason); n < 4 || n > 240 {
		return fmt.Errorf("--reason must be 4-240 characters")
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

	if err := st.FlagResult(cmd.Context(), args[0], flagReason, flagRemove); err != nil {
		return fmt.Errorf("failed to flag result: %w", err)
	}
	if flagRemove {
		logErrf("Removed result %s\n", args[0])
	} else {
		logErrf("Flagged result %s\n", args[0])
	}
	return nil
}

func runAdminFlagsCmd(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := openStore(cmd, settings)
	if err != nil {
		return err
	}
	defer closeStore(st)

	flags, err := st.ListFlags(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list flags: %w", err)
	}
	if len(flags) == 0 {
		logErrf("No flags for result %s\n", args[0])
		return nil
	}
	out := cmd.OutOrStdout()
	for _, f := range flags {
		if _, err := fmt.Fprintf(out, "%s  %s\n", f.CreatedAt.Local().Format(time.DateTime), f.Reason); err != nil {
			return err
		}
	}
	return nil
}

func runAdminPremiumCmd(cmd *cobra.Command, args []string) error {
	status, err := model.ParseSubscriptionStatus(premiumStatus)
	if err != nil {
		return err
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

	if err := st.SetSubscription(cmd.Context(), args[0], status); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	logErrf("%s is now %s\n", args[0], status)
	return nil
}
