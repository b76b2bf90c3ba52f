package job

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	pb "github.com/cheggaaa/pb/v3"
	"github.com/kevwan/mapreduce/v2"

	"github.com/ogzhanolguncu/word-count-in-go/logger"
)

// ErrInvalidEncoding marks an input file that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("invalid UTF-8")

type fileLines struct {
	index int
	lines []string
}

// Loader reads every regular file of a directory as lines.
type Loader struct {
	workers  int
	progress io.Writer
	log      *logger.Logger
}

func NewLoader(workers int, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	return &Loader{workers: workers, log: log}
}

// WithProgress draws a progress bar over the files being read on w.
func (l *Loader) WithProgress(w io.Writer) *Loader {
	l.progress = w
	return l
}

// Load reads the files concurrently. Lines come back grouped by file, files
// in name order, lines in file order.
func (l *Loader) Load(ctx context.Context, dir string) ([]string, error) {
	paths, err := listInputs(dir)
	if err != nil {
		return nil, err
	}
	l.log.WithField("dir", dir).Infof("found %d input files", len(paths))
	if len(paths) == 0 {
		return nil, nil
	}

	var bar *pb.ProgressBar
	if l.progress != nil {
		bar = pb.New(len(paths)).SetWriter(l.progress).Start()
		defer bar.Finish()
	}

	perFile, err := mapreduce.MapReduce[int, fileLines, [][]string](
		func(source chan<- int) {
			for i := range paths {
				source <- i
			}
		},
		func(i int, writer mapreduce.Writer[fileLines], cancel func(error)) {
			lines, err := readLines(paths[i])
			if err != nil {
				cancel(err)
				return
			}
			l.log.WithField("file", filepath.Base(paths[i])).Debugf("read %d lines", len(lines))
			if bar != nil {
				bar.Increment()
			}
			writer.Write(fileLines{index: i, lines: lines})
		},
		func(pipe <-chan fileLines, writer mapreduce.Writer[[][]string], cancel func(error)) {
			out := make([][]string, len(paths))
			for fl := range pipe {
				out[fl.index] = fl.lines
			}
			writer.Write(out)
		},
		mapreduce.WithWorkers(l.workers),
		mapreduce.WithContext(ctx),
	)
	if err != nil {
		// mapreduce reports any done context as a deadline
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	total := 0
	for _, lines := range perFile {
		total += len(lines)
	}
	lines := make([]string, 0, total)
	for _, fl := range perFile {
		lines = append(lines, fl...)
	}
	return lines, nil
}

func listInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list input directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			continue
		}
		// A symlinked directory is skipped like a real one. A dangling link
		// stays in the list and fails when read.
		if e.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				continue
			}
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// readLines splits a file on '\n', dropping the terminator and a trailing
// '\r'. A final line without a terminator is kept. Every line must be valid
// UTF-8.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			if !utf8.ValidString(line) {
				return nil, fmt.Errorf("read %s: line %d: %w", path, len(lines)+1, ErrInvalidEncoding)
			}
			line = strings.TrimSuffix(line, "\n")
			lines = append(lines, strings.TrimSuffix(line, "\r"))
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
}
