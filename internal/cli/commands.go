package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ansindait/aci-system-sub001/internal/checklist"
	"github.com/ansindait/aci-system-sub001/internal/models"
	"github.com/ansindait/aci-system-sub001/internal/service"
)

type SiteOptions struct {
	*RootOptions
	SiteID   string
	SiteName string
}

type ProgressOutput struct {
	SiteID   string                `json:"site_id,omitempty" yaml:"site_id,omitempty"`
	SiteName string                `json:"site_name,omitempty" yaml:"site_name,omitempty"`
	Progress models.ProgressResult `json:"progress" yaml:"progress"`
	Status   string                `json:"status" yaml:"status"`
}

type ActivityOutput struct {
	SiteName     string `json:"site_name" yaml:"site_name"`
	LastActivity string `json:"last_activity" yaml:"last_activity"`
}

func (o *SiteOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.SiteID, "site-id", "", "site id")
	cmd.Flags().StringVar(&o.SiteName, "site-name", "", "site name")
}

func (o *SiteOptions) validate() error {
	if strings.TrimSpace(o.SiteID) == "" && strings.TrimSpace(o.SiteName) == "" {
		return fmt.Errorf("--site-id or --site-name is required")
	}
	return nil
}

func (o *SiteOptions) compute(cmd *cobra.Command) (ProgressOutput, error) {
	if err := o.validate(); err != nil {
		return ProgressOutput{}, err
	}
	backend, err := o.connect(cmd.Context())
	if err != nil {
		return ProgressOutput{}, err
	}
	defer backend.Close()

	svc := &service.ProgressService{
		Source:       backend,
		Logger:       o.logger(cmd.ErrOrStderr()),
		QueryTimeout: o.queryTimeout(),
	}
	progress := svc.SiteProgress(cmd.Context(), o.SiteID, o.SiteName)
	return ProgressOutput{
		SiteID:   strings.TrimSpace(o.SiteID),
		SiteName: strings.TrimSpace(o.SiteName),
		Progress: progress,
		Status:   service.DeriveSiteStatus(progress),
	}, nil
}

func newProgressCommand(root *RootOptions) *cobra.Command {
	opts := &SiteOptions{RootOptions: root}
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Per-division progress for one site",
		Example: `  progressctl progress --site-name BDG-001
  progressctl progress --site-id 12345 -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.compute(cmd)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), opts.Output, out)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newStatusCommand(root *RootOptions) *cobra.Command {
	opts := &SiteOptions{RootOptions: root}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Site status derived from its progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := opts.compute(cmd)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), opts.Output, map[string]string{"status": out.Status})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newLastActivityCommand(root *RootOptions) *cobra.Command {
	var siteName string
	cmd := &cobra.Command{
		Use:   "last-activity",
		Short: "Newest upload time for a site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(siteName) == "" {
				return fmt.Errorf("--site-name is required")
			}
			loc, err := root.location()
			if err != nil {
				return err
			}
			backend, err := root.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			svc := &service.ActivityService{
				Tasks:        backend,
				Logger:       root.logger(cmd.ErrOrStderr()),
				Location:     loc,
				QueryTimeout: root.queryTimeout(),
			}
			return write(cmd.OutOrStdout(), root.Output, ActivityOutput{
				SiteName:     strings.TrimSpace(siteName),
				LastActivity: svc.LastActivity(cmd.Context(), siteName),
			})
		},
	}
	cmd.Flags().StringVar(&siteName, "site-name", "", "site name (case-insensitive)")
	return cmd
}

func newChecklistCommand(root *RootOptions) *cobra.Command {
	var division string
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "List checklist entries with default targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := checklist.Describe()
			if division != "" {
				d, ok := models.ParseDivision(division)
				if !ok {
					return fmt.Errorf("unknown division %q", division)
				}
				filtered := items[:0]
				for _, it := range items {
					if it.Division == d {
						filtered = append(filtered, it)
					}
				}
				items = filtered
			}
			return write(cmd.OutOrStdout(), root.Output, items)
		},
	}
	cmd.Flags().StringVar(&division, "division", "", "only entries of this division")
	return cmd
}
