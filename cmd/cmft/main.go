// Command cmft filters and converts cubemap environment maps from the
// command line: specular radiance prefiltering, SH-based irradiance
// filtering, raw SH coefficient dumps, and layout/format conversion
// (spec.md §6).
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cmft",
		Short: "Filter and convert cubemap environment maps for image-based lighting",
	}

	cmd.AddCommand(
		newRadianceCmd(),
		newIrradianceCmd(),
		newSHCoeffsCmd(),
		newConvertCmd(),
	)
	return cmd
}

func fatalf(format string, args ...any) {
	log.Printf(format, args...)
	os.Exit(1)
}
