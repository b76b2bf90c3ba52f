package job

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ogzhanolguncu/word-count-in-go/logger"
)

func readReport(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, ReportFile))
	require.NoError(t, err)
	if len(data) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func newDriver(t *testing.T, cfg Config) *Driver {
	t.Helper()
	d, err := NewDriver(cfg)
	require.NoError(t, err)
	return d
}

func TestDriverEndToEnd(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "output")
	writeFile(t, in, "animals.txt", "cat dog\ncat\n")

	d := newDriver(t, Config{InputDir: in, OutputDir: out})
	require.NoError(t, d.Run(context.Background()))

	require.Equal(t, []string{"cat\t2", "dog\t1"}, readReport(t, out))
	require.FileExists(t, filepath.Join(out, MarkerFile))
	require.Equal(t, Done, d.State())
	require.Equal(t, []State{Idle, Loading, Mapping, Grouping, Reducing, Writing, Done}, d.History())
	require.NotEmpty(t, d.ID())

	// the marker is committed after the report
	report, err := os.Stat(filepath.Join(out, ReportFile))
	require.NoError(t, err)
	marker, err := os.Stat(filepath.Join(out, MarkerFile))
	require.NoError(t, err)
	require.False(t, marker.ModTime().Before(report.ModTime()))
}

func TestDriverEmptyInput(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, in, "empty.txt", "")

	d := newDriver(t, Config{InputDir: in, OutputDir: out})
	require.NoError(t, d.Run(context.Background()))

	require.Empty(t, readReport(t, out))
	require.FileExists(t, filepath.Join(out, MarkerFile))
}

func TestDriverMissingInput(t *testing.T) {
	out := t.TempDir()
	// left over from an earlier successful run
	writeFile(t, out, MarkerFile, "Job completed successfully.\n")

	d := newDriver(t, Config{InputDir: filepath.Join(t.TempDir(), "missing"), OutputDir: out})
	err := d.Run(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInput)
	require.NotErrorIs(t, err, ErrOutput)

	var jobErr *Error
	require.True(t, errors.As(err, &jobErr))
	require.Equal(t, Loading, jobErr.State)
	require.Equal(t, Failed, d.State())
	require.NoFileExists(t, filepath.Join(out, MarkerFile))
	require.NoFileExists(t, filepath.Join(out, ReportFile))
}

func TestDriverUnreadableInputFile(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, in string)
		kind    error
	}{
		{
			name: "dangling symlink",
			prepare: func(t *testing.T, in string) {
				require.NoError(t, os.Symlink(filepath.Join(in, "gone.txt"), filepath.Join(in, "link.txt")))
			},
			kind: os.ErrNotExist,
		},
		{
			name: "latin-1 bytes",
			prepare: func(t *testing.T, in string) {
				writeFile(t, in, "latin1.txt", "caf\xe9 ni\xf1o\n")
			},
			kind: ErrInvalidEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out := t.TempDir(), t.TempDir()
			writeFile(t, in, "good.txt", "cat dog\n")
			tt.prepare(t, in)

			d := newDriver(t, Config{InputDir: in, OutputDir: out, Workers: 2})
			err := d.Run(context.Background())
			require.ErrorIs(t, err, ErrInput)
			require.ErrorIs(t, err, tt.kind)

			var jobErr *Error
			require.True(t, errors.As(err, &jobErr))
			require.Equal(t, Loading, jobErr.State)
			require.Equal(t, Failed, d.State())
			require.NoFileExists(t, filepath.Join(out, MarkerFile))
			require.NoFileExists(t, filepath.Join(out, ReportFile))
		})
	}
}

func TestDriverOutputFailure(t *testing.T) {
	in, base := t.TempDir(), t.TempDir()
	writeFile(t, in, "a.txt", "a b a\n")
	writeFile(t, base, "out", "a file where the output directory should be")

	d := newDriver(t, Config{InputDir: in, OutputDir: filepath.Join(base, "out")})
	err := d.Run(context.Background())
	require.ErrorIs(t, err, ErrOutput)

	var jobErr *Error
	require.True(t, errors.As(err, &jobErr))
	require.Equal(t, Writing, jobErr.State)
	require.Equal(t, Failed, d.State())
}

func TestDriverCancelled(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, in, "a.txt", "a b c\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newDriver(t, Config{InputDir: in, OutputDir: out, Workers: 2})
	err := d.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrInput)
	require.Equal(t, Failed, d.State())
	require.NoFileExists(t, filepath.Join(out, MarkerFile))
}

func TestDriverRetryRestartsFromLoading(t *testing.T) {
	in, out := filepath.Join(t.TempDir(), "in"), t.TempDir()

	d := newDriver(t, Config{InputDir: in, OutputDir: out})
	require.ErrorIs(t, d.Run(context.Background()), ErrInput)
	firstID := d.ID()

	require.NoError(t, os.Mkdir(in, 0o755))
	writeFile(t, in, "a.txt", "again again\n")
	require.NoError(t, d.Run(context.Background()))

	require.NotEqual(t, firstID, d.ID())
	require.Equal(t, Done, d.State())
	require.Equal(t, []string{"again\t2"}, readReport(t, out))
}

// Counts are stable across runs and worker counts, the report is sorted and
// accounts for every token.
func TestDriverReportInvariants(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "1.txt", "El niño y la niña.\nEl perro, el gato; ¡el ratón!\n")
	writeFile(t, in, "2.txt", "La canción del niño\n\n123 gatos 123\n")
	writeFile(t, in, "3.txt", "PERRO perro Perro")

	var reports [][]string
	for _, workers := range []int{1, 2, 8} {
		out := t.TempDir()
		d := newDriver(t, Config{InputDir: in, OutputDir: out, Workers: workers})
		require.NoError(t, d.Run(context.Background()))
		reports = append(reports, readReport(t, out))
	}
	for _, r := range reports[1:] {
		require.Equal(t, reports[0], r)
	}

	total := 0
	prev := -1
	for _, line := range reports[0] {
		word, countStr, ok := strings.Cut(line, "\t")
		require.True(t, ok, line)
		require.NotEmpty(t, word)
		count, err := strconv.Atoi(countStr)
		require.NoError(t, err)
		if prev >= 0 {
			require.LessOrEqual(t, count, prev)
		}
		prev = count
		total += count
	}
	require.Equal(t, 21, total)
	require.Equal(t, "el\t4", reports[0][0])
	require.Equal(t, "perro\t4", reports[0][1])
}

func TestDriverLogsTransitions(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, in, "a.txt", "x\n")

	var buf bytes.Buffer
	d, err := NewDriver(Config{InputDir: in, OutputDir: out}, WithLogger(logger.New(&buf, logrus.DebugLevel)))
	require.NoError(t, err)
	require.NoError(t, d.Run(context.Background()))

	var states []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		if strings.Contains(sc.Text(), "entered state") {
			_, s, _ := strings.Cut(sc.Text(), "state=")
			states = append(states, strings.Fields(s)[0])
		}
		require.Contains(t, sc.Text(), "job="+d.ID())
	}
	require.Equal(t, []string{"Loading", "Mapping", "Grouping", "Reducing", "Writing", "Done"}, states)
}

func TestNewDriverValidatesConfig(t *testing.T) {
	_, err := NewDriver(Config{OutputDir: "out"})
	require.Error(t, err)
	_, err = NewDriver(Config{InputDir: "in"})
	require.Error(t, err)
}
