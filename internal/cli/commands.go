package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"evidentia/internal/evidence/bootstrap"
	"evidentia/internal/evidence/export"
	"evidentia/internal/evidence/models"
	"evidentia/internal/evidence/pack"
	"evidentia/internal/evidence/service"
	"evidentia/pkg/domain"
)

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the evidence and audit schemas to the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := bootstrap.OpenStore(cmd.Context(), a.cfg.Storage)
			if err != nil {
				return err
			}
			if db == nil {
				fmt.Fprintln(a.out, "memory store: nothing to migrate")
				return nil
			}
			defer db.Close()
			if _, err := bootstrap.OpenAuditDatabase(cmd.Context(), a.cfg.Storage.Driver, db); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "schema applied (%s)\n", a.cfg.Storage.Driver)
			return nil
		},
	}
}

func (a *app) verifyCmd() *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-verify every record of a profile and list integrity failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profileID, err := domain.ParseProfileID(profile)
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				failures, checked, err := svc.VerifyProfile(cmd.Context(), profileID)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "checked %d records, %d integrity failures\n", checked, len(failures))
				for _, f := range failures {
					fmt.Fprintf(a.out, "FAIL %s: %s\n", f.RecordID, f.Reason)
				}
				if len(failures) > 0 {
					return fmt.Errorf("%d records failed verification", len(failures))
				}
				return nil
			})
		},
	}
	profileFlag(cmd, &profile)
	return cmd
}

func (a *app) gapsCmd() *cobra.Command {
	var profile, start, end string
	cmd := &cobra.Command{
		Use:   "gaps",
		Short: "List documentation gaps and their explanations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profileID, err := domain.ParseProfileID(profile)
			if err != nil {
				return err
			}
			window, err := parseRange(start, end)
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				found, err := svc.DetectGaps(cmd.Context(), profileID, window)
				if err != nil {
					return err
				}
				if len(found) == 0 {
					fmt.Fprintln(a.out, "no gaps")
					return nil
				}
				for _, g := range found {
					status := "unexplained"
					if n := len(g.Explanations); n > 0 {
						reasons := make([]string, n)
						for i, e := range g.Explanations {
							reasons[i] = e.Reason
						}
						status = "explained: " + strings.Join(reasons, "; ")
					}
					fmt.Fprintf(a.out, "%s..%s  %d days  %s\n", g.Gap.StartDate, g.Gap.EndDate, g.Gap.LengthDays, status)
				}
				return nil
			})
		},
	}
	profileFlag(cmd, &profile)
	rangeFlags(cmd, &start, &end)
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	var profile, start, end string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Compute statistics with their source records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profileID, err := domain.ParseProfileID(profile)
			if err != nil {
				return err
			}
			window, err := parseRange(start, end)
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				results, err := svc.ComputeStatistics(cmd.Context(), profileID, window)
				if err != nil {
					return err
				}
				return a.printJSON(results)
			})
		},
	}
	profileFlag(cmd, &profile)
	rangeFlags(cmd, &start, &end)
	return cmd
}

func (a *app) packCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Build submission packs",
	}
	cmd.AddCommand(a.packBuildCmd())
	return cmd
}

// packOutput is a built pack and, with --sign, its manifest.
type packOutput struct {
	Pack     export.Pack `json:"pack"`
	Manifest string      `json:"manifest,omitempty"`
}

func (a *app) packBuildCmd() *cobra.Command {
	var (
		profile, start, end string
		types               []string
		sign                bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Freeze matching records and their statistics into a new pack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profileID, err := domain.ParseProfileID(profile)
			if err != nil {
				return err
			}
			window, err := parseRange(start, end)
			if err != nil {
				return err
			}
			criteria := pack.Criteria{Range: window}
			for _, raw := range types {
				t, err := models.ParseRecordType(raw)
				if err != nil {
					return err
				}
				criteria.RecordTypes = append(criteria.RecordTypes, t)
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				p, err := svc.BuildPack(cmd.Context(), profileID, criteria)
				if err != nil {
					return err
				}
				out := packOutput{Pack: export.FromPack(p)}
				if sign {
					if out.Manifest, err = svc.SignPack(cmd.Context(), profileID, p.ID()); err != nil {
						return err
					}
				}
				return a.printJSON(out)
			})
		},
	}
	profileFlag(cmd, &profile)
	rangeFlags(cmd, &start, &end)
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	cmd.Flags().StringSliceVar(&types, "type", nil, "restrict to record types (repeatable)")
	cmd.Flags().BoolVar(&sign, "sign", false, "also issue a signed manifest")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full evidence bundle of a profile as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profileID, err := domain.ParseProfileID(profile)
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				bundle, err := svc.ExportBundle(cmd.Context(), profileID)
				if err != nil {
					return err
				}
				return a.printJSON(bundle)
			})
		},
	}
	profileFlag(cmd, &profile)
	return cmd
}
