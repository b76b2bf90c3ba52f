package job

import (
	"errors"
	"runtime"
)

type Config struct {
	InputDir  string
	OutputDir string
	// Workers bounds concurrency in every stage. <= 0 means GOMAXPROCS.
	Workers int
	// Progress draws a progress bar on stderr while input files load.
	Progress bool
}

func (c Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("input directory required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory required")
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}
