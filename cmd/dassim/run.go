package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eth2030/dassim/pkg/dasconfig"
	"github.com/eth2030/dassim/pkg/dasxml"
	"github.com/eth2030/dassim/pkg/dassim"
	"github.com/eth2030/dassim/pkg/simmetrics"
)

var runOutput string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a single simulation run from a Shape config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := dasconfig.Load(cfgFile)
		if err != nil {
			return err
		}
		if f.Shape == nil {
			return fmt.Errorf("dassim run: config file has no top-level shape")
		}

		log := logger()
		sim := dassim.NewSimulator(*f.Shape, f.Config, log)
		sim.InitValidators()
		sim.InitNetwork()
		result := sim.Run()
		log.Debug("metrics snapshot", "metrics", simmetrics.DefaultRegistry.Snapshot())

		out, err := dasxml.Marshal(result)
		if err != nil {
			return err
		}
		if runOutput == "" || runOutput == "-" {
			_, err = os.Stdout.Write(out)
			return err
		}
		return os.WriteFile(runOutput, out, 0o644)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "-", "XML output path, or - for stdout")
}
