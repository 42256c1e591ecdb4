// Package cli wires the sortimages command tree.
package cli

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/developertyrone/sortimages/pkg/config"
	"github.com/developertyrone/sortimages/pkg/metadata"
	"github.com/developertyrone/sortimages/pkg/organizer"
	"github.com/developertyrone/sortimages/pkg/output"
)

// Version is overridden at build time via -ldflags.
var Version = "0.1.0"

// rootFlags are shared by every sort command.
type rootFlags struct {
	configFile  string
	debug       bool
	noColor     bool
	dryRun      bool
	onCollision string
}

// sortFlags select the secondary criteria and recursion.
type sortFlags struct {
	recursive bool
	origin    bool
	date      bool
	size      bool
}

// Execute runs the command line in args and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	var failed bool
	root := newRootCommand(stdout, stderr, &failed)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		if !failed {
			output.NewPrinter(stderr, true).Error(err.Error())
		}
		return 1
	}
	return 0
}

func newRootCommand(stdout, stderr io.Writer, failed *bool) *cobra.Command {
	rf := &rootFlags{}

	cmd := &cobra.Command{
		Use:     "sortimages",
		Version: Version,
		Short:   "Sort images into directories by date, origin or size",
		Long: `sortimages scans a directory of images and moves each one into nested
sub-directories derived from its metadata.

Commands:
  origin   Sort the images by origin - camera, device or software
  date     Sort the images by date of creation
  size     Sort the images by size - width and height in pixels

The flags --origin, --date and --size add secondary levels beneath the
primary one, always in the order date, origin, size.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(stderr, cmd.UsageString())
			return errors.New("a command is required: origin, date or size")
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("Sort Images {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVarP(&rf.configFile, "config", "c", "", "Path to a TOML configuration file")
	pf.BoolVar(&rf.debug, "debug", false, "Log diagnostics to stderr")
	pf.BoolVar(&rf.noColor, "no-color", false, "Disable coloured output")
	pf.BoolVar(&rf.dryRun, "dry-run", false, "Print what would be moved without touching any file")
	pf.StringVar(&rf.onCollision, "on-collision", string(organizer.Overwrite), "What to do when the destination file exists: overwrite, skip, rename or fail")

	for _, c := range []organizer.Criterion{organizer.Origin, organizer.Date, organizer.Size} {
		cmd.AddCommand(newSortCommand(c, rf, stdout, stderr, failed))
	}
	return cmd
}

func newSortCommand(primary organizer.Criterion, rf *rootFlags, stdout, stderr io.Writer, failed *bool) *cobra.Command {
	sf := &sortFlags{}

	cmd := &cobra.Command{
		Use:   primary.String() + " <directory>",
		Short: "Sort the images by " + primary.String(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliArgs := collectArgs(cmd.Flags(), primary, args[0], rf, sf)
			return run(cliArgs, stdout, stderr, failed)
		},
	}

	addSortFlags(cmd.Flags(), sf)
	return cmd
}

func addSortFlags(fs *pflag.FlagSet, sf *sortFlags) {
	fs.BoolVarP(&sf.recursive, "recursive", "r", false, "Recursive, scan sub-directories too")
	fs.BoolVarP(&sf.origin, "origin", "o", false, "Sort the resulting directories by origin")
	fs.BoolVarP(&sf.date, "date", "d", false, "Sort the resulting directories by date")
	fs.BoolVarP(&sf.size, "size", "s", false, "Sort the resulting directories by image size in pixels")
}

func collectArgs(fs *pflag.FlagSet, primary organizer.Criterion, dir string, rf *rootFlags, sf *sortFlags) config.CLIArgs {
	var secondary []organizer.Criterion
	if sf.date {
		secondary = append(secondary, organizer.Date)
	}
	if sf.origin {
		secondary = append(secondary, organizer.Origin)
	}
	if sf.size {
		secondary = append(secondary, organizer.Size)
	}

	return config.CLIArgs{
		Directory:      dir,
		Primary:        primary,
		Secondary:      secondary,
		ConfigFile:     rf.configFile,
		Recursive:      sf.recursive,
		RecursiveSet:   fs.Changed("recursive"),
		OnCollision:    rf.onCollision,
		OnCollisionSet: fs.Changed("on-collision"),
		Debug:          rf.debug,
		DebugSet:       fs.Changed("debug"),
		NoColor:        rf.noColor,
		NoColorSet:     fs.Changed("no-color"),
		DryRun:         rf.dryRun,
	}
}

func run(cliArgs config.CLIArgs, stdout, stderr io.Writer, failed *bool) error {
	eff, err := config.Resolve(cliArgs)
	if err != nil {
		output.NewPrinter(stdout, cliArgs.NoColor).Error(err.Error())
		*failed = true
		return err
	}

	printer := output.NewPrinter(stdout, eff.NoColor)
	log := newLogger(stderr, eff.Debug)

	org := organizer.NewOrganizer(eff.Directory, eff.Spec, metadata.NewExtractor(log), printer, log)
	org.Collision = eff.Collision
	org.JunkFiles = eff.JunkFiles
	org.DryRun = eff.DryRun

	if _, err := org.Run(); err != nil {
		printer.Error(err.Error())
		*failed = true
		return err
	}
	return nil
}

func newLogger(w io.Writer, debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}
