package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petrodeal/docgen-cli/internal/extract"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <template-id>",
	Short: "Extract and persist a template's placeholders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx, "analyze")
		if err != nil {
			return err
		}
		defer e.Close()

		tmpl, err := e.Store.GetTemplate(ctx, args[0])
		if err != nil {
			return err
		}
		content, err := e.Blobs.Get(ctx, tmpl.ContentRef)
		if err != nil {
			return eris.Wrap(err, "fetch template content")
		}

		placeholders, err := extract.Extract(content)
		if err != nil {
			return err
		}
		if err := e.Store.UpdateTemplateAnalysis(ctx, tmpl.ID, placeholders, nil); err != nil {
			return err
		}

		zap.L().Info("template analyzed",
			zap.String("template_id", tmpl.ID),
			zap.Int("placeholders", len(placeholders)),
		)
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"template_id":  tmpl.ID,
			"placeholders": placeholders,
		})
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
