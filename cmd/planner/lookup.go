package main

import (
	"delivery-dispatch-service/internal/services"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup PACKAGE_ID",
	Short: "Print one package's status at --at and the fleet's miles so far",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("package id %q must be a positive integer", args[0])
		}
		at, err := reportTime()
		if err != nil {
			return err
		}

		run, err := dispatch(cmd.Context())
		if err != nil {
			return err
		}
		detail, err := run.Reporter.Package(id, at)
		if err != nil {
			return err
		}
		printPackage(os.Stdout, detail)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func printPackage(out io.Writer, d services.PackageDetail) {
	p := d.Package
	fmt.Fprintf(out, "package %d\n", p.PackageID)
	fmt.Fprintf(out, "  address:   %s\n", p.Address)
	fmt.Fprintf(out, "  deadline:  %s\n", p.Deadline)
	fmt.Fprintf(out, "  weight:    %g kg\n", p.WeightKg)
	if p.Notes != "" {
		fmt.Fprintf(out, "  notes:     %s\n", p.Notes)
	}
	fmt.Fprintf(out, "  truck:     %d\n", p.TruckID)
	fmt.Fprintf(out, "  status:    %s\n", p.Status)
	if p.Projected {
		fmt.Fprintf(out, "  expected:  %s\n", p.DeliveredAt)
	} else {
		fmt.Fprintf(out, "  delivered: %s\n", p.DeliveredAt)
	}
	fmt.Fprintf(out, "fleet miles so far: %.1f\n", d.FleetMiles)
}
