package analyze

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arjunmahishi/tsls/cst"
	"github.com/arjunmahishi/tsls/document"
	"github.com/arjunmahishi/tsls/langdef"
	"github.com/arjunmahishi/tsls/types"
)

func TestRunWorkers(t *testing.T) {
	language := cst.Get("go")
	require.NotNil(t, language)
	def, err := langdef.Parse([]byte(language.Rules()))
	require.NoError(t, err)

	for _, tc := range []struct {
		files, jobs int
	}{
		{files: 0, jobs: 4},
		{files: 1, jobs: 1},
		{files: 6, jobs: 1},
		{files: 12, jobs: 4},
		{files: 3, jobs: 10},
		{files: 40, jobs: 16},
		{files: 5, jobs: 0},
		{files: 5, jobs: -2},
	} {
		t.Run(fmt.Sprintf("files=%d/jobs=%d", tc.files, tc.jobs), func(t *testing.T) {
			dir := t.TempDir()
			want := writeFuncFiles(t, dir, tc.files)

			jobs, err := finder{language: language, maxBytes: defaultMaxBytes}.find(dir)
			require.NoError(t, err)
			require.Len(t, jobs, tc.files)

			got, err := runWorkers(context.Background(), language, jobs, tc.jobs, topLevelName(def))
			require.NoError(t, err)
			if tc.files == 0 {
				require.Empty(t, got)
				return
			}
			sort.Strings(got)
			require.Equal(t, want, got)
		})
	}
}

func TestRunWorkersDropsRejected(t *testing.T) {
	language := cst.Get("go")
	jobs := make([]types.FileJob, 30)
	for i := range jobs {
		jobs[i] = types.FileJob{DisplayPath: fmt.Sprintf("f%02d.go", i)}
	}

	var (
		mu   sync.Mutex
		seen = map[string]int{}
	)
	got, err := runWorkers(context.Background(), language, jobs, 8,
		func(_ context.Context, _ *cst.Parser, job types.FileJob) (string, bool) {
			mu.Lock()
			defer mu.Unlock()
			seen[job.DisplayPath]++
			return job.DisplayPath, len(seen)%2 == 0
		})
	require.NoError(t, err)
	require.Len(t, seen, 30)
	for name, n := range seen {
		require.Equal(t, 1, n, name)
	}
	require.Len(t, got, 15)
}

func TestRunWorkersCancelled(t *testing.T) {
	language := cst.Get("go")
	def, err := langdef.Parse([]byte(language.Rules()))
	require.NoError(t, err)

	dir := t.TempDir()
	writeFuncFiles(t, dir, 20)
	jobs, err := finder{language: language}.find(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runWorkers(ctx, language, jobs, 4, topLevelName(def))
	require.ErrorIs(t, err, context.Canceled)
}

// writeFuncFiles writes n files into dir, each declaring one function, and
// returns the sorted function names.
func writeFuncFiles(t *testing.T, dir string, n int) []string {
	t.Helper()

	names := []string{}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("Fn%03d", i)
		src := "package p\n\nfunc " + name + "() {}\n"
		path := filepath.Join(dir, fmt.Sprintf("f%03d.go", i))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func topLevelName(def *langdef.Definition) func(context.Context, *cst.Parser, types.FileJob) (string, bool) {
	return func(ctx context.Context, p *cst.Parser, job types.FileJob) (string, bool) {
		snap, ok := build(ctx, p, def, job, document.Options{})
		if !ok {
			return "", false
		}
		for _, sym := range snap.Table.GetTopLevelSymbols().All() {
			if sym.Name != "" {
				return sym.Name, true
			}
		}
		return "", false
	}
}
