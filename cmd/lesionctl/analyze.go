package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lesion-bot/config"
	"lesion-bot/internal/container"
	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/infrastructure/imageio"
	"lesion-bot/internal/infrastructure/metrics"
)

type analyzeOptions struct {
	age           int
	gender        string
	skinType      string
	familyHistory []string
	smoker        bool
	regularChecks bool
	bodyLocation  string
	verbose       bool
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze IMAGE",
		Short: "Analyze a lesion photo and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			img, err := imageio.NewDecoder(cfg.MaxUploadSize).Decode(data)
			if err != nil {
				return err
			}

			services, err := container.FromConfig(cfg, metrics.Nop{}, newLogger(opts.verbose))
			if err != nil {
				return err
			}

			req := entity.AnalysisRequest{
				Image:   img,
				Patient: opts.patient(cmd),
			}
			if opts.bodyLocation != "" {
				req.BodyLocation = &opts.bodyLocation
			}

			out, err := services.AnalysisService.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out.Result)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.age, "age", 0, "patient age in years")
	f.StringVar(&opts.gender, "gender", "", "patient gender")
	f.StringVar(&opts.skinType, "skin-type", "", "Fitzpatrick skin type (I-VI)")
	f.StringSliceVar(&opts.familyHistory, "family-history", nil, "family history conditions (melanoma, skin_cancer)")
	f.BoolVar(&opts.smoker, "smoker", false, "patient smokes; --smoker=false records a non-smoker")
	f.BoolVar(&opts.regularChecks, "regular-checks", false, "patient has regular skin checks")
	f.StringVar(&opts.bodyLocation, "body-location", "", "body location of the lesion")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline steps to stderr")

	return cmd
}

// patient собирает факторы риска только из явно заданных флагов.
func (o analyzeOptions) patient(cmd *cobra.Command) *entity.PatientRiskFactors {
	flags := cmd.Flags()
	var p entity.PatientRiskFactors
	set := false

	if flags.Changed("age") {
		age := o.age
		p.Age = &age
		set = true
	}
	if o.gender != "" {
		gender := o.gender
		p.Gender = &gender
		set = true
	}
	if o.skinType != "" {
		skin := o.skinType
		if tone, ok := entity.ParseFitzpatrick(skin); ok {
			skin = tone.String()
		}
		p.SkinType = &skin
		set = true
	}
	if len(o.familyHistory) > 0 {
		p.FamilyHistory = make(map[string]bool, len(o.familyHistory))
		for _, k := range o.familyHistory {
			p.FamilyHistory[strings.ToLower(strings.TrimSpace(k))] = true
		}
		set = true
	}
	if flags.Changed("smoker") || flags.Changed("regular-checks") {
		p.MedicalHistory = make(map[string]bool)
		if flags.Changed("smoker") {
			p.MedicalHistory[entity.HistorySmoking] = o.smoker
		}
		if flags.Changed("regular-checks") {
			p.MedicalHistory[entity.HistoryRegularSkinChecks] = o.regularChecks
		}
		set = true
	}

	if !set {
		return nil
	}
	return &p
}
