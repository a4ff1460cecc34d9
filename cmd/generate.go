package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/petrodeal/docgen-cli/internal/model"
)

var (
	genVesselID   int64
	genPortID     int64
	genRefineryID int64
	genCompanyID  int64
	genBuyerID    int64
	genSellerID   int64
	genEncodings  []string
	genInference  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <template-id>",
	Short: "Generate filled documents from a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx, "generate")
		if err != nil {
			return err
		}
		defer e.Close()

		req := model.GenerateRequest{
			TemplateID:   args[0],
			VesselID:     optionalID(genVesselID),
			PortID:       optionalID(genPortID),
			RefineryID:   optionalID(genRefineryID),
			CompanyID:    optionalID(genCompanyID),
			BuyerID:      optionalID(genBuyerID),
			SellerID:     optionalID(genSellerID),
			UseInference: genInference,
		}
		encodings := genEncodings
		if len(encodings) == 0 {
			encodings = cfg.Render.DefaultEncodings
		}
		for _, enc := range encodings {
			req.Encodings = append(req.Encodings, model.Encoding(enc))
		}

		resp, err := e.Engine.Generate(ctx, req)
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(resp)
	},
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func init() {
	generateCmd.Flags().Int64Var(&genVesselID, "vessel", 0, "vessel id")
	generateCmd.Flags().Int64Var(&genPortID, "port", 0, "port id")
	generateCmd.Flags().Int64Var(&genRefineryID, "refinery", 0, "refinery id")
	generateCmd.Flags().Int64Var(&genCompanyID, "company", 0, "company id")
	generateCmd.Flags().Int64Var(&genBuyerID, "buyer", 0, "buyer company id")
	generateCmd.Flags().Int64Var(&genSellerID, "seller", 0, "seller company id")
	generateCmd.Flags().StringSliceVar(&genEncodings, "encodings", nil, "output encodings (docx,pdf,html)")
	generateCmd.Flags().BoolVar(&genInference, "ai", false, "enable the AI suggestion tier")
	rootCmd.AddCommand(generateCmd)
}
