package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review AI placeholder mapping suggestions",
}

var reviewListCmd = &cobra.Command{
	Use:   "list <template-id>",
	Short: "List pending suggestions for a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx, "review")
		if err != nil {
			return err
		}
		defer e.Close()

		pending, err := e.Reviewer.Pending(ctx, args[0])
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(pending)
	},
}

var reviewApproveCmd = &cobra.Command{
	Use:   "approve <suggestion-id>",
	Short: "Approve a suggestion and commit its mapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx, "review")
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := e.Reviewer.Approve(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("approved %s: %q -> %s\n", s.ID, s.Placeholder, s.EffectiveField())
		return nil
	},
}

var reviewRejectCmd = &cobra.Command{
	Use:   "reject <suggestion-id>",
	Short: "Reject a suggestion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx, "review")
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := e.Reviewer.Reject(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("rejected %s: %q\n", s.ID, s.Placeholder)
		return nil
	},
}

var reviewCustomCmd = &cobra.Command{
	Use:   "custom <suggestion-id> <field>",
	Short: "Override a suggestion with a reviewer-chosen field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx, "review")
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := e.Reviewer.Override(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("custom mapping %s: %q -> %s\n", s.ID, s.Placeholder, s.EffectiveField())
		return nil
	},
}

var reviewAutoApplyCmd = &cobra.Command{
	Use:   "auto-apply <template-id>",
	Short: "Approve and commit every pending high-confidence suggestion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx, "review")
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.Reviewer.AutoApplyHighConfidence(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("auto-applied %d suggestions\n", n)
		return nil
	},
}

var reviewApplyCmd = &cobra.Command{
	Use:   "apply <template-id> <suggestion-id>...",
	Short: "Commit selected approved or custom suggestions",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx, "review")
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.Reviewer.ApplySelected(ctx, args[0], args[1:])
		if err != nil {
			return err
		}
		fmt.Printf("committed %d suggestions\n", n)
		return nil
	},
}

func init() {
	reviewCmd.AddCommand(reviewListCmd, reviewApproveCmd, reviewRejectCmd, reviewCustomCmd, reviewAutoApplyCmd, reviewApplyCmd)
	rootCmd.AddCommand(reviewCmd)
}
