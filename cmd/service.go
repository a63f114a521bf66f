package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frgrisk/tidemark/internal/gitrepo/govcs"
	"github.com/frgrisk/tidemark/internal/ops/service"
	"github.com/frgrisk/tidemark/internal/output"
)

var (
	serviceInterval  uint32
	serviceUnitName  string
	serviceLocalOnly bool
	serviceExplain   bool
	serviceTag       string
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage a systemd user timer that runs tidemark mark on a schedule",
}

var servicePlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview the unit and timer files without installing them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := service.PlanService(serviceRequest())
		if err != nil {
			return err
		}

		if output.IsTTY(os.Stdout.Fd()) {
			preview, err := service.RenderPreview(plan)
			if err == nil {
				fmt.Print(preview)
				return nil
			}
			// Fall through to the raw form if terminal rendering fails for
			// any reason (e.g. unsupported style), since the plan itself is
			// still valid.
		}

		fmt.Printf("unit=%s\nservice_file=%s\ntimer_file=%s\n\n%s\n%s", plan.UnitName, plan.ServiceFile, plan.TimerFile, plan.ServiceContent, plan.TimerContent)
		return nil
	},
}

var serviceInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install and enable the systemd user timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := service.InstallUserService(serviceRequest())
		if err != nil {
			return err
		}
		fmt.Printf("installed %s (%s, %s)\n", plan.UnitName, plan.ServiceFile, plan.TimerFile)
		return nil
	},
}

var serviceUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Disable and remove the systemd user timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		repo, err := govcs.Discover(cwd)
		if err != nil {
			return err
		}

		plan, err := service.UninstallUserService(service.UninstallRequest{
			RepoRoot: repo.RepoRoot(),
			UnitName: serviceUnitName,
		})
		if err != nil {
			return err
		}
		fmt.Printf("uninstalled %s\n", plan.UnitName)
		return nil
	},
}

func serviceRequest() service.InstallRequest {
	cwd, err := os.Getwd()
	repoRoot := cwd
	if err != nil {
		repoRoot = "."
	} else if repo, derr := govcs.Discover(cwd); derr == nil {
		repoRoot = repo.RepoRoot()
	}

	return service.InstallRequest{
		RepoRoot:        repoRoot,
		IntervalMinutes: serviceInterval,
		UnitName:        serviceUnitName,
		LocalOnly:       serviceLocalOnly,
		Explain:         serviceExplain,
		MetadataSuffix:  serviceTag,
	}
}

func init() {
	for _, c := range []*cobra.Command{servicePlanCmd, serviceInstallCmd} {
		c.Flags().Uint32Var(&serviceInterval, "interval", 60, "minutes between scheduled runs")
		c.Flags().StringVar(&serviceUnitName, "unit-name", "", "override the derived systemd unit name")
		c.Flags().BoolVar(&serviceLocalOnly, "local-only", false, "scheduled run skips remote tag refresh")
		c.Flags().BoolVar(&serviceExplain, "explain", false, "scheduled run prints the full explain output")
		c.Flags().StringVar(&serviceTag, "tag", "", "scheduled run's metadata suffix")
	}
	serviceUninstallCmd.Flags().StringVar(&serviceUnitName, "unit-name", "", "override the derived systemd unit name")

	serviceCmd.AddCommand(servicePlanCmd, serviceInstallCmd, serviceUninstallCmd)
	rootCmd.AddCommand(serviceCmd)
}
