package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petrodeal/docgen-cli/internal/extract"
	"github.com/petrodeal/docgen-cli/internal/model"
	"github.com/petrodeal/docgen-cli/internal/store"
)

var (
	templatesTier       string
	templatesActiveOnly bool
	templatesLimit      int

	addTitle       string
	addDescription string
	addTier        string
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage document templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx, "templates")
		if err != nil {
			return err
		}
		defer e.Close()

		templates, err := e.Store.ListTemplates(ctx, store.TemplateFilter{
			Tier:       model.SubscriptionTier(templatesTier),
			ActiveOnly: templatesActiveOnly,
			Limit:      templatesLimit,
		})
		if err != nil {
			return err
		}

		return json.NewEncoder(os.Stdout).Encode(templates)
	},
}

var templatesAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Register a template from a local file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx, "templates")
		if err != nil {
			return err
		}
		defer e.Close()

		path := args[0]
		content, err := os.ReadFile(path)
		if err != nil {
			return eris.Wrap(err, "read template file")
		}

		tmpl := &model.Template{
			ID:          uuid.New().String(),
			Title:       addTitle,
			Description: addDescription,
			FileName:    filepath.Base(path),
			Tier:        model.SubscriptionTier(addTier),
			Active:      true,
		}
		if tmpl.Title == "" {
			tmpl.Title = tmpl.FileName
		}

		ref, err := e.Blobs.Put(ctx, fmt.Sprintf("templates/%s/%s", tmpl.ID, tmpl.FileName), content)
		if err != nil {
			return eris.Wrap(err, "store template content")
		}
		tmpl.ContentRef = ref

		// Analyze on ingest so the template is generation-ready immediately.
		placeholders, err := extract.Extract(content)
		if err != nil {
			zap.L().Warn("template analysis failed on ingest", zap.Error(err))
			placeholders = nil
		}
		tmpl.Placeholders = placeholders

		if err := e.Store.CreateTemplate(ctx, tmpl); err != nil {
			return err
		}

		fmt.Printf("registered template %s (%d placeholders)\n", tmpl.ID, len(placeholders))
		return nil
	},
}

var templatesActivateCmd = &cobra.Command{
	Use:   "activate <template-id>",
	Short: "Mark a template active",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setActive(cmd, args[0], true) },
}

var templatesDeactivateCmd = &cobra.Command{
	Use:   "deactivate <template-id>",
	Short: "Mark a template inactive",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setActive(cmd, args[0], false) },
}

func setActive(cmd *cobra.Command, id string, active bool) error {
	ctx := cmd.Context()
	e, err := initEnv(ctx, "templates")
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Store.SetTemplateActive(ctx, id, active); err != nil {
		return err
	}
	fmt.Printf("template %s active=%v\n", id, active)
	return nil
}

func init() {
	templatesListCmd.Flags().StringVar(&templatesTier, "tier", "", "filter by subscription tier")
	templatesListCmd.Flags().BoolVar(&templatesActiveOnly, "active", false, "only active templates")
	templatesListCmd.Flags().IntVar(&templatesLimit, "limit", 50, "max templates to list")

	templatesAddCmd.Flags().StringVar(&addTitle, "title", "", "template title (defaults to file name)")
	templatesAddCmd.Flags().StringVar(&addDescription, "description", "", "template description")
	templatesAddCmd.Flags().StringVar(&addTier, "tier", "basic", "subscription tier (basic|pro|enterprise)")

	templatesCmd.AddCommand(templatesListCmd, templatesAddCmd, templatesActivateCmd, templatesDeactivateCmd)
	rootCmd.AddCommand(templatesCmd)
}
