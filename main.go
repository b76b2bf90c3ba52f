package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ogzhanolguncu/word-count-in-go/corpus"
	"github.com/ogzhanolguncu/word-count-in-go/job"
	"github.com/ogzhanolguncu/word-count-in-go/logger"
)

func main() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case sig := <-sigChan:
			fmt.Fprintf(os.Stderr, "Received signal: %v, cancelling\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel string
}

func (o *rootOptions) newLogger(cmd *cobra.Command) (*logger.Logger, error) {
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	return logger.New(cmd.ErrOrStderr(), level), nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "wordcount",
		Short:         "Count word frequencies across a directory of text files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(opts), newGenerateCmd(opts))
	return root
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var cfg job.Config
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the word-count job and write part-00000 and _SUCCESS",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := opts.newLogger(cmd)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return err
			}
			driver, err := job.NewDriver(cfg, job.WithLogger(log))
			if err != nil {
				log.WithError(err).Errorf("cannot start job")
				return err
			}

			start := time.Now()
			// a failed run is logged by the driver
			err = driver.Run(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Execution time: %.2f seconds\n", time.Since(start).Seconds())
			return err
		},
	}

	cmd.Flags().StringVar(&cfg.InputDir, "input", "", "Directory of input text files")
	cmd.Flags().StringVar(&cfg.OutputDir, "output", "", "Directory receiving the report")
	cmd.Flags().IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "Number of workers per stage (1 runs sequentially)")
	cmd.Flags().BoolVar(&cfg.Progress, "progress", false, "Show a progress bar while loading input files")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	return cmd
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		rawDir   string
		inputDir string
		copies   int
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fill an input directory with copies of raw text files",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := opts.newLogger(cmd)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return err
			}
			copied, err := corpus.Replicate(rawDir, inputDir, copies, workers)
			if err != nil {
				log.WithError(err).Errorf("generating corpus failed")
				return err
			}
			log.WithField("dir", inputDir).Infof("wrote %d files", copied)
			return nil
		},
	}

	cmd.Flags().StringVar(&rawDir, "raw", "", "Directory of raw text files to copy")
	cmd.Flags().StringVar(&inputDir, "input", "", "Directory to fill")
	cmd.Flags().IntVar(&copies, "copies", 1, "Copies of each raw file")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Concurrent copies")
	cmd.MarkFlagRequired("raw")
	cmd.MarkFlagRequired("input")
	return cmd
}
