package main

import (
	"delivery-dispatch-service/internal/services"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var trucksCmd = &cobra.Command{
	Use:   "trucks",
	Short: "Print each truck's location and mileage at --at",
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
		return printTrucks(os.Stdout, run.Reporter.Trucks(at))
	},
}

func init() {
	rootCmd.AddCommand(trucksCmd)
}

func printTrucks(out io.Writer, report services.FleetReport) error {
	fmt.Fprintf(out, "trucks at %s\n", report.At)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TRUCK\tDRIVER\tDEPARTS\tLOCATION\tMILES\tDONE\tPACKAGES")
	for _, t := range report.Trucks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\t%t\t%v\n", t.TruckID, t.Driver, t.DepartAt, t.Location.Name, t.Miles, t.Completed, t.PackageIDs)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "total miles: %.1f\n", report.TotalMiles)
	return nil
}
