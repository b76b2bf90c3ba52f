// Package corpus builds large input directories for benchmarking the job by
// copying a set of raw text files many times.
package corpus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kevwan/mapreduce/v2"
)

type copyTask struct {
	src string
	dst string
}

// Replicate copies every regular file of rawDir into inputDir n times, named
// copy_<i>_<name>, and returns how many files it wrote. inputDir is created
// if missing.
func Replicate(rawDir, inputDir string, n, workers int) (int, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return 0, fmt.Errorf("list raw directory: %w", err)
	}
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		return 0, fmt.Errorf("create input directory: %w", err)
	}

	var tasks []copyTask
	for i := 0; i < n; i++ {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			tasks = append(tasks, copyTask{
				src: filepath.Join(rawDir, e.Name()),
				dst: filepath.Join(inputDir, fmt.Sprintf("copy_%d_%s", i, e.Name())),
			})
		}
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	return mapreduce.MapReduce[copyTask, int, int](
		func(source chan<- copyTask) {
			for _, t := range tasks {
				source <- t
			}
		},
		func(t copyTask, writer mapreduce.Writer[int], cancel func(error)) {
			if err := copyFile(t.src, t.dst); err != nil {
				cancel(err)
				return
			}
			writer.Write(1)
		},
		func(pipe <-chan int, writer mapreduce.Writer[int], cancel func(error)) {
			copied := 0
			for c := range pipe {
				copied += c
			}
			writer.Write(copied)
		},
		mapreduce.WithWorkers(workers),
	)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
