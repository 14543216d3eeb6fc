/*
Copyright © 2026 the buoyingest authors.
This file is part of buoyingest.

buoyingest is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

buoyingest is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with buoyingest.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package buoyingestutil holds the command-line interface and configuration
// loading for the buoyingest pipeline.
package buoyingestutil

import (
	"context"
	"fmt"
	"log"

	"github.com/lnashier/viper"
	"github.com/oceandata/buoyingest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options settable from the command
	// line. The dataset definition, attribute candidates, and QC rules
	// are nested structures and are only settable from the
	// configuration file.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputStorage",
			usage: `
              OutputStorage specifies where finished datasets and plots are
              stored: a local directory, or an S3 bucket given as 's3://name'.`,
			defaultVal: "output",
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "Plots.Variables",
			usage: `
              Plots.Variables lists the output variables to render
              diagnostic plots for.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("BUOYINGEST")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(ingestCmd)
}

// outChan returns a channel printing to the log.
func outChan() chan string {
	outChan := make(chan string)
	go func() {
		for {
			msg := <-outChan
			log.Println(msg)
		}
	}()
	return outChan
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("buoyingest: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "buoyingest",
	Short: "A configuration-driven buoy data ingest pipeline.",
	Long: `buoyingest merges raw buoy instrument files into one standardized,
self-describing dataset, quality-checks it against the rules in the
configuration file, and renders diagnostic plots.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'BUOYINGEST_var' where
'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of buoyingest.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("buoyingest v%s (code version %s)\n", buoyingest.Version, buoyingest.CodeVersion())
	},
	DisableAutoGenTag: true,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [raw files]",
	Short: "Ingest raw buoy instrument files.",
	Long: `ingest reads the given raw instrument files (local paths or http(s)
URLs), runs them through the pipeline as one logical dataset, and writes the
standardized output dataset and diagnostic plots to the output storage.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()
		ctx := context.Background()

		attrs, err := GlobalAttrs(Cfg)
		if err != nil {
			return err
		}
		def, err := DatasetDef(Cfg)
		if err != nil {
			return err
		}
		qcRules, err := QCRules(Cfg)
		if err != nil {
			return err
		}
		storage, err := buoyingest.NewBlobStorage(ctx, Cfg.GetString("OutputStorage"))
		if err != nil {
			return err
		}

		inputs := make([]string, len(args))
		for i, arg := range args {
			inputs[i] = maybeDownload(arg, outChan)
		}

		p := &buoyingest.IngestPipeline{
			Attrs:      attrs,
			Definition: def,
			Storage:    storage,
			QCRules:    qcRules,
			PlotVars:   Cfg.GetStringSlice("Plots.Variables"),
			MsgChan:    outChan,
		}
		_, err = p.Run(ctx, inputs)
		if buoyingest.IsQCError(err) {
			// The pipeline skips the output write after a fatal quality
			// failure, but the failure itself still gets logged here.
			log.Printf("buoyingest: fatal quality-control failure, output not written: %v", err)
			return err
		}
		return err
	},
	DisableAutoGenTag: true,
}
