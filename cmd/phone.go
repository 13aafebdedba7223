package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rohnsht/PhoneNumber/internal/conformance"
	"github.com/rohnsht/PhoneNumber/internal/logger"
)

var (
	regionFlag string
	localeFlag string
	strictFlag bool
)

var parseCmd = &cobra.Command{
	Use:   "parse TEXT...",
	Short: "Parse numbers and print their renderings as JSON",
	Long: "With one argument prints a single result; with several prints a map " +
		"from each distinct input to its result (null when it does not parse).",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newPhoneService(cfg, logger.Log, false)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			res, err := svc.Parse(args[0], regionFlag)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		}
		res, err := svc.ParseList(args, regionFlag)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), res)
	},
}

var formatCmd = &cobra.Command{
	Use:   "format TEXT",
	Short: "Format text the way an as-you-type field would",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newPhoneService(cfg, logger.Log, false)
		if err != nil {
			return err
		}
		out, err := svc.Format(args[0], regionFlag)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate TEXT",
	Short: "Report whether TEXT is a valid number for --region",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newPhoneService(cfg, logger.Log, false)
		if err != nil {
			return err
		}
		ok, err := svc.Validate(args[0], regionFlag)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), ok)
		return err
	},
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List supported regions with localized names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newPhoneService(cfg, logger.Log, false)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), svc.SupportedRegions(localeFlag))
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare dataset examples against libphonenumber",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine(cfg)
		if err != nil {
			return err
		}
		rep := conformance.Check(engine, conformance.LibPhoneNumber{})

		out := cmd.OutOrStdout()
		for _, m := range rep.Mismatches {
			fmt.Fprintln(out, m)
		}
		for _, e := range rep.Errors {
			fmt.Fprintln(out, "error:", e)
		}
		fmt.Fprintf(out, "dataset %s: %d examples, %d mismatches, %d errors\n",
			engine.Registry().Version(), rep.Checked, len(rep.Mismatches), len(rep.Errors))

		if strictFlag && !rep.OK() {
			return fmt.Errorf("dataset does not conform")
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{parseCmd, formatCmd, validateCmd} {
		c.Flags().StringVarP(&regionFlag, "region", "r", "", "region hint (ISO 3166-1 alpha-2)")
	}
	regionsCmd.Flags().StringVarP(&localeFlag, "locale", "l", "", "display locale, e.g. de or pt-BR")
	verifyCmd.Flags().BoolVar(&strictFlag, "strict", false, "exit non-zero on any mismatch")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
