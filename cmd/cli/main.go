package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gosem/adapters/csvio"
	"gosem/app"
	"gosem/domain/model"
	"gosem/domain/sem"
	"gosem/internal/analysis"
	"gosem/internal/config"
	"gosem/internal/scores"
	"gosem/internal/testkit"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "gosem-cli",
		Short: "GSCM site impact analysis: construct scores, KPI indices, outer model, structural paths",
	}

	rootCmd.AddCommand(
		newPipelineCmd(cfg),
		newOuterModelCmd(cfg),
		newPathsCmd(cfg),
		newGenerateCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newPipelineCmd(cfg *config.Config) *cobra.Command {
	var surveyPath, kpiPath, methodStr, outDir string

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the full site-level pipeline: constructs, KPI indices, merge, outer model, paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := sem.ParseMethod(methodStr)
			if err != nil {
				return err
			}

			survey, err := csvio.NewDataReader(surveyPath).ReadTable(scores.SiteIDColumn)
			if err != nil {
				return fmt.Errorf("survey: %w", err)
			}
			kpis, err := csvio.NewDataReader(kpiPath).ReadTable(scores.SiteIDColumn)
			if err != nil {
				return fmt.Errorf("kpis: %w", err)
			}

			pipeline := app.NewPipeline(model.Default(), nil)
			run, merged, err := pipeline.Run(context.Background(), survey, kpis, method)
			if err != nil {
				return err
			}

			if outDir != "" {
				mergedPath := filepath.Join(outDir, "site_level_merged.csv")
				if err := csvio.WriteTable(merged, mergedPath); err != nil {
					return err
				}
				outerPath := filepath.Join(outDir, "outer_model.csv")
				if err := csvio.WriteOuterModel(run.OuterModel, outerPath); err != nil {
					return err
				}
				fmt.Printf("Merged dataset saved to: %s\n", mergedPath)
				fmt.Printf("Outer model stats saved to: %s\n\n", outerPath)
			}

			printOuterModel(run.OuterModel)
			printPathResults(run.Paths)
			printCorrelations(run.Correlations)
			return nil
		},
	}

	cmd.Flags().StringVar(&surveyPath, "survey", cfg.Paths.SurveyFile, "Respondent-level survey CSV/XLSX")
	cmd.Flags().StringVar(&kpiPath, "kpis", cfg.Paths.KPIFile, "Raw KPI CSV/XLSX")
	cmd.Flags().StringVar(&methodStr, "method", string(cfg.Analysis.Method), "Index combination method: simple or weighted")
	cmd.Flags().StringVar(&outDir, "out-dir", cfg.Paths.OutputDir, "Directory for CSV outputs (empty to skip writing)")
	return cmd
}

func newOuterModelCmd(cfg *config.Config) *cobra.Command {
	var surveyPath, outPath string

	cmd := &cobra.Command{
		Use:   "outer-model [construct-codes...]",
		Short: "Compute reliability/validity statistics for reflective constructs",
		RunE: func(cmd *cobra.Command, args []string) error {
			survey, err := csvio.NewDataReader(surveyPath).ReadTable(scores.SiteIDColumn)
			if err != nil {
				return fmt.Errorf("survey: %w", err)
			}

			var codes []string
			if len(args) > 0 {
				codes = args
			}
			estimator := analysis.NewOuterModelEstimator(model.Default())
			results, err := estimator.Compute(context.Background(), survey, codes)
			if err != nil {
				return err
			}

			printOuterModel(results)
			if outPath != "" {
				if err := csvio.WriteOuterModel(results, outPath); err != nil {
					return err
				}
				fmt.Printf("Outer model stats saved to: %s\n", outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&surveyPath, "survey", filepath.Join(cfg.Paths.OutputDir, "survey_synthetic.csv"), "Respondent-level survey CSV/XLSX")
	cmd.Flags().StringVar(&outPath, "out", "", "Optional CSV output path")
	return cmd
}

func newPathsCmd(cfg *config.Config) *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Run the structural path regressions on a site-level dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			sites, err := csvio.NewDataReader(dataPath).ReadTable(scores.SiteIDColumn)
			if err != nil {
				return fmt.Errorf("site data: %w", err)
			}

			pipeline := app.NewPipeline(model.Default(), nil)
			run, err := pipeline.AnalyzeSiteTable(context.Background(), sites, nil)
			if err != nil {
				return err
			}
			printPathResults(run.Paths)
			printCorrelations(run.Correlations)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", filepath.Join(cfg.Paths.OutputDir, "site_level_synthetic.csv"), "Site-level CSV/XLSX")
	return cmd
}

func newGenerateCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic datasets for testing the pipeline",
	}
	cmd.AddCommand(newGenerateSitesCmd(cfg), newGenerateSurveyCmd(cfg))
	return cmd
}

func newGenerateSitesCmd(cfg *config.Config) *cobra.Command {
	var n int
	var seed int64
	var outPath string

	cmd := &cobra.Command{
		Use:   "sites",
		Short: "Generate a synthetic site-level dataset (constructs, KPIs, indices)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultSiteConfig()
			cfg.Sites = n
			cfg.Seed = seed

			fmt.Printf("Generating %d synthetic sites (seed=%d)...\n", cfg.Sites, cfg.Seed)
			sites := testkit.NewSiteGenerator(cfg).Generate()
			if err := csvio.WriteTable(sites, outPath); err != nil {
				return err
			}
			fmt.Printf("Synthetic dataset saved to: %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", 100, "Number of sites")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic generation")
	cmd.Flags().StringVar(&outPath, "out", filepath.Join(cfg.Paths.OutputDir, "site_level_synthetic.csv"), "Output CSV path")
	return cmd
}

func newGenerateSurveyCmd(cfg *config.Config) *cobra.Command {
	var sitesPath, outPath string
	var perSite int
	var seed int64
	var latentSigma, indicatorSigma float64

	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Generate respondent-level survey data around site-level construct scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			sites, err := csvio.NewDataReader(sitesPath).ReadTable(scores.SiteIDColumn)
			if err != nil {
				return fmt.Errorf("site data: %w", err)
			}

			cfg := testkit.DefaultSurveyConfig()
			cfg.RespondentsPerSite = perSite
			cfg.LatentSigma = latentSigma
			cfg.IndicatorSigma = indicatorSigma
			cfg.Seed = seed

			survey, err := testkit.NewSurveyGenerator(model.Default(), cfg).Generate(sites)
			if err != nil {
				return err
			}
			if err := csvio.WriteTable(survey, outPath); err != nil {
				return err
			}
			fmt.Printf("Synthetic survey saved to: %s (%d rows)\n", outPath, survey.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&sitesPath, "sites", filepath.Join(cfg.Paths.OutputDir, "site_level_synthetic.csv"), "Site-level CSV with construct scores")
	cmd.Flags().StringVar(&outPath, "out", filepath.Join(cfg.Paths.OutputDir, "survey_synthetic.csv"), "Output CSV path")
	cmd.Flags().IntVar(&perSite, "per-site", 8, "Respondents per site")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic generation")
	cmd.Flags().Float64Var(&latentSigma, "latent-sigma", 0.4, "Respondent latent spread around the site score")
	cmd.Flags().Float64Var(&indicatorSigma, "indicator-sigma", 0.5, "Item noise around the respondent latent")
	return cmd
}
