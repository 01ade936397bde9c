package script

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/hitdata/internal/store"
)

// RunWithGolden replays a script into st and compares the table snapshot
// against testdata/golden/{script.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/script -update
//
// Returns the replay result, or an error if the replay fails. A snapshot
// mismatch fails the test through goldie.
func RunWithGolden(t *testing.T, s *Script, st *store.Store, opts Options) (*Result, error) {
	t.Helper()
	ctx := context.Background()

	result, err := Run(ctx, s, st, opts)
	if err != nil {
		return nil, err
	}

	snapshot, err := Snapshot(ctx, st)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, snapshot)

	return result, nil
}
