package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/petrodeal/docgen-cli/internal/model"
	"github.com/petrodeal/docgen-cli/internal/report"
	"github.com/petrodeal/docgen-cli/internal/validator"
)

var (
	valVesselID   int64
	valPortID     int64
	valCompanyID  int64
	valRender     bool
	valXLSXOutput string
)

var validateCmd = &cobra.Command{
	Use:   "validate <template-id>",
	Short: "Score a template's mapping quality against sample entities",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx, "validate")
		if err != nil {
			return err
		}
		defer e.Close()

		var refs []model.EntityRef
		if valVesselID != 0 {
			refs = append(refs, model.EntityRef{Kind: model.KindVessel, ID: valVesselID})
		}
		if valPortID != 0 {
			refs = append(refs, model.EntityRef{Kind: model.KindPort, ID: valPortID})
		}
		if valCompanyID != 0 {
			refs = append(refs, model.EntityRef{Kind: model.KindCompany, ID: valCompanyID})
		}

		rep, err := e.Validator.Validate(ctx, validator.Options{
			TemplateID:  args[0],
			Refs:        refs,
			RenderCheck: valRender,
		})
		if err != nil {
			return err
		}

		if valXLSXOutput != "" {
			f, err := os.Create(valXLSXOutput)
			if err != nil {
				return eris.Wrap(err, "create xlsx output")
			}
			defer f.Close()
			if err := report.WriteXLSX(f, []model.ValidationReport{*rep}); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "report written to %s\n", valXLSXOutput)
		}

		return json.NewEncoder(os.Stdout).Encode(rep)
	},
}

func init() {
	validateCmd.Flags().Int64Var(&valVesselID, "vessel", 0, "sample vessel id")
	validateCmd.Flags().Int64Var(&valPortID, "port", 0, "sample port id")
	validateCmd.Flags().Int64Var(&valCompanyID, "company", 0, "sample company id")
	validateCmd.Flags().BoolVar(&valRender, "render", false, "also exercise every output encoding")
	validateCmd.Flags().StringVar(&valXLSXOutput, "xlsx", "", "write the report to an xlsx file")
	rootCmd.AddCommand(validateCmd)
}
