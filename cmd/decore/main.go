// Command decore is the CLI front end for the decompiler core: drive one
// function (or every head function) through the pipeline to one of its
// four stopping points, or dump the raw PCode a prepared image file
// carries.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gamous/SDA/internal/hostdefault"
	"github.com/gamous/SDA/internal/logx"
	"github.com/gamous/SDA/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "decore",
		Short: "decompiler core: PCode graph to symbolized expression graph",
	}
	root.AddCommand(newDecompileCmd(), newDumpCmd())
	return root
}

func newDecompileCmd() *cobra.Command {
	var (
		stopAt     string
		all        bool
		maxLoop    int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "decompile <image-file> [entry-offset]",
		Short: "run the pipeline over one function or every head function",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := parseStage(stopAt)
			if err != nil {
				return err
			}

			img, instrs, err := loadImage(args[0])
			if err != nil {
				return err
			}

			logger := logx.New()
			if verbose {
				logger.SetLevel(logger.GetLevel() + 1)
			}

			sess := session.New(
				hostdefault.NewTypeManager(),
				hostdefault.NewSymbolContext(),
				hostdefault.NewSignatureResolver(),
				hostdefault.NewInstructionPool(instrs),
				session.Config{MaxLoopVersion: maxLoop},
				logger,
			)

			if all || len(args) == 1 {
				results, err := sess.DecompileAll(context.Background(), img, stage)
				if err != nil {
					return err
				}
				for _, fr := range results {
					if verbose {
						fmt.Fprintf(os.Stderr, "run %s:\n", fr.RunID)
					}
					fmt.Println(printGraph(fr.Graph.Graph))
				}
				return nil
			}

			entry, err := mustFuncEntryOffset(args[1])
			if err != nil {
				return err
			}
			fg, err := img.GetFuncGraphAt(entry, false)
			if err != nil {
				return err
			}
			fr, err := sess.DecompileFunction(fg, stage)
			if err != nil {
				return err
			}
			if verbose {
				fmt.Fprintf(os.Stderr, "run %s:\n", fr.RunID)
			}
			fmt.Println(printGraph(fr.Graph.Graph))
			return nil
		},
	}

	cmd.Flags().StringVar(&stopAt, "stop-at", "final", "decompiling|processing|symbolizing|final")
	cmd.Flags().BoolVar(&all, "all", false, "decompile every head function instead of one entry")
	cmd.Flags().IntVar(&maxLoop, "max-loop-version", 0, "loop-version cap (0 = default)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "raise log verbosity")
	return cmd
}

func newDumpCmd() *cobra.Command {
	dumpPcode := &cobra.Command{
		Use:   "pcode <image-file>",
		Short: "print the raw PCode instruction stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, instrs, err := loadImage(args[0])
			if err != nil {
				return err
			}
			for _, in := range instrs {
				fmt.Printf("%s %s\n", in.Offset, in.Op)
			}
			return nil
		},
	}

	dump := &cobra.Command{Use: "dump", Short: "dump intermediate data"}
	dump.AddCommand(dumpPcode)
	return dump
}

func parseStage(s string) (session.Stage, error) {
	switch s {
	case "decompiling":
		return session.StageDecompiling, nil
	case "processing":
		return session.StageProcessing, nil
	case "symbolizing":
		return session.StageSymbolizing, nil
	case "final", "":
		return session.StageFinalProcessing, nil
	default:
		return 0, fmt.Errorf("unknown --stop-at %q", s)
	}
}
