package main

import (
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/services"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Dispatch and print routes plus every package's status at --at",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		at, err := reportTime()
		if err != nil {
			return err
		}
		run, err := dispatch(cmd.Context())
		if err != nil {
			return err
		}
		return printRun(os.Stdout, run, at)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func printRun(out io.Writer, run *services.DispatchRun, at domain.TimeOfDay) error {
	res := run.Result
	fmt.Fprintf(out, "run %s  seed %d  on time %t  total miles %.1f\n", res.RunID, res.Seed, res.OnTime, res.TotalMiles)
	for _, s := range res.Swaps {
		fmt.Fprintf(out, "swapped package %d (truck %d) with package %d (truck %d)\n", s.PackageA, s.TruckA, s.PackageB, s.TruckB)
	}
	for _, v := range res.Violations {
		fmt.Fprintf(out, "LATE package %d on truck %d: due %s, delivered %s\n", v.PackageID, v.TruckID, v.Deadline, v.DeliveredAt)
	}

	timeline := run.Coordinator.Timeline()
	for _, t := range run.Coordinator.Fleet().Trucks() {
		plan, err := timeline.BuildRoutePlan(t)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\ntruck %d (%s) departs %s, returns %s, %.1f miles\n", plan.TruckID, t.Driver, plan.DepartAt, plan.FinishAt, plan.TotalMiles)
		for _, s := range plan.Stops {
			fmt.Fprintf(out, "  %s  %-45s %v\n", s.ArriveAt, run.Network.Locations.At(s.Location).Address, s.PackageIDs)
		}
	}

	// The CLI owns this index, so stamping statuses in place is safe here.
	index := run.Coordinator.Packages()
	index.UpdateAllStatuses(at)

	fmt.Fprintf(out, "\npackages at %s\n", at)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tADDRESS\tDEADLINE\tTRUCK\tSTATUS\tDELIVERED")
	for _, p := range index.All() {
		delivered := "--"
		if p.DeliveredAt.IsSet() && p.DeliveredAt <= at {
			delivered = p.DeliveredAt.String()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", p.PackageID, p.ReportedAddress, p.Deadline, p.TruckID, p.Status, delivered)
	}
	return w.Flush()
}
