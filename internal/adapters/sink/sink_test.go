package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"sentiprep/internal/core/table"
	perr "sentiprep/internal/platform/errors"
	"sentiprep/internal/platform/testkit"
)

func pair() (*table.Table, *table.Table) {
	train := table.MustNew([]string{"review", "sentiment", "score"},
		[]table.Value{table.String("good, very good"), table.Int(1), table.Float(0.5)},
		[]table.Value{table.Missing(), table.Int(0), table.Float(1e21)},
	)
	test := table.MustNew([]string{"review", "sentiment", "score"},
		[]table.Value{table.String("say \"meh\""), table.Int(0), table.Missing()},
	)
	return train, test
}

func TestWritePair(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "raw")
	train, test := pair()

	paths, err := CSV{Dir: dir}.WritePair(context.Background(), RawNames, train, test)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	want := []string{filepath.Join(dir, "train.csv"), filepath.Join(dir, "test.csv")}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths = %v", paths)
	}

	gotTrain := testkit.ReadCSV(t, paths[0])
	wantTrain := [][]string{
		{"review", "sentiment", "score"},
		{"good, very good", "1", "0.5"},
		{"", "0", "1e+21"},
	}
	if !reflect.DeepEqual(gotTrain, wantTrain) {
		t.Fatalf("train.csv = %q", gotTrain)
	}
	gotTest := testkit.ReadCSV(t, paths[1])
	if !reflect.DeepEqual(gotTest, [][]string{{"review", "sentiment", "score"}, {`say "meh"`, "0", ""}}) {
		t.Fatalf("test.csv = %q", gotTest)
	}

	parts, _ := filepath.Glob(filepath.Join(dir, "*.part"))
	if len(parts) != 0 {
		t.Fatalf("leftover temporaries: %v", parts)
	}

	// existing dir and files are fine
	if _, err := (CSV{Dir: dir}).WritePair(context.Background(), RawNames, test, train); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if got := testkit.ReadCSV(t, paths[0]); len(got) != 2 {
		t.Fatalf("train.csv not replaced: %d lines", len(got))
	}
}

func TestWrite_Single(t *testing.T) {
	dir := t.TempDir()
	tbl := table.MustNew([]string{"a"})
	p, err := CSV{Dir: dir}.Write(context.Background(), "empty.csv", tbl)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got := testkit.ReadCSV(t, p); !reflect.DeepEqual(got, [][]string{{"a"}}) {
		t.Fatalf("empty.csv = %q", got)
	}
	if _, err := (CSV{Dir: dir}).Write(context.Background(), "", tbl); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
}

func TestWritePair_BadNames(t *testing.T) {
	train, test := pair()
	for _, n := range []Names{{}, {Train: "x.csv"}, {Train: "x.csv", Test: "x.csv"}} {
		if _, err := (CSV{Dir: t.TempDir()}).WritePair(context.Background(), n, train, test); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Fatalf("names %+v: want invalid argument, got %v", n, err)
		}
	}
	if _, err := (CSV{Dir: t.TempDir()}).WritePair(context.Background(), RawNames, train, nil); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("nil table: want invalid argument, got %v", err)
	}
}

func assertNoOutputs(t *testing.T, dir string) {
	t.Helper()
	for _, pat := range []string{"train*.csv", "test*.csv", "*.part", "*.prev"} {
		m, _ := filepath.Glob(filepath.Join(dir, pat))
		if len(m) != 0 {
			t.Fatalf("failed write left %v behind", m)
		}
	}
}

func TestWritePair_FailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	// a directory where the second temporary should go makes its create fail
	if err := os.Mkdir(filepath.Join(dir, "test_processed.csv.part"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "test_processed.csv.part", "x"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	train, test := pair()

	_, err := CSV{Dir: dir}.WritePair(context.Background(), ProcessedNames, train, test)
	if !perr.IsCode(err, perr.ErrorCodeProcessing) {
		t.Fatalf("want processing error, got %v", err)
	}
	if e, _ := perr.As(err); e.Field() != "test_processed.csv" {
		t.Fatalf("field = %q", e.Field())
	}
	if _, serr := os.Stat(filepath.Join(dir, "train_processed.csv")); !os.IsNotExist(serr) {
		t.Fatalf("train_processed.csv exists after failure")
	}
	if _, serr := os.Stat(filepath.Join(dir, "train_processed.csv.part")); !os.IsNotExist(serr) {
		t.Fatalf("train temporary left behind")
	}
}

func TestWritePair_RenameFailure(t *testing.T) {
	testkit.Serial(t)
	dir := t.TempDir()
	testkit.Swap(t, &rename, failLanding("test.csv"))
	train, test := pair()

	_, err := CSV{Dir: dir}.WritePair(context.Background(), RawNames, train, test)
	if !perr.IsCode(err, perr.ErrorCodeProcessing) {
		t.Fatalf("want processing error, got %v", err)
	}
	assertNoOutputs(t, dir)
}

// failLanding fails the rename of the named file's temporary into place
func failLanding(name string) func(from, to string) error {
	return func(from, to string) error {
		if filepath.Base(to) == name && filepath.Ext(from) == ".part" {
			return errors.New("disk on fire")
		}
		return os.Rename(from, to)
	}
}

func TestWritePair_FailedCommitKeepsPreviousPair(t *testing.T) {
	testkit.Serial(t)
	dir := t.TempDir()
	train, test := pair()
	if _, err := (CSV{Dir: dir}).WritePair(context.Background(), RawNames, train, test); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before := map[string][][]string{
		"train.csv": testkit.ReadCSV(t, filepath.Join(dir, "train.csv")),
		"test.csv":  testkit.ReadCSV(t, filepath.Join(dir, "test.csv")),
	}

	testkit.Swap(t, &rename, failLanding("test.csv"))
	smaller := table.MustNew([]string{"review"}, []table.Value{table.String("new")})
	if _, err := (CSV{Dir: dir}).WritePair(context.Background(), RawNames, smaller, smaller); !perr.IsCode(err, perr.ErrorCodeProcessing) {
		t.Fatalf("want processing error, got %v", err)
	}

	for name, want := range before {
		if got := testkit.ReadCSV(t, filepath.Join(dir, name)); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s changed after a failed run: %q", name, got)
		}
	}
	for _, pat := range []string{"*.part", "*.prev"} {
		if m, _ := filepath.Glob(filepath.Join(dir, pat)); len(m) != 0 {
			t.Fatalf("failed run left %v behind", m)
		}
	}
}

func TestWritePair_ReplacesPreviousPair(t *testing.T) {
	dir := t.TempDir()
	train, test := pair()
	if _, err := (CSV{Dir: dir}).WritePair(context.Background(), RawNames, train, test); err != nil {
		t.Fatalf("first run: %v", err)
	}
	one := table.MustNew([]string{"review"}, []table.Value{table.String("second")})
	if _, err := (CSV{Dir: dir}).WritePair(context.Background(), RawNames, one, one); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := testkit.ReadCSV(t, filepath.Join(dir, "train.csv")); !reflect.DeepEqual(got, [][]string{{"review"}, {"second"}}) {
		t.Fatalf("train.csv = %q", got)
	}
	if m, _ := filepath.Glob(filepath.Join(dir, "*.prev")); len(m) != 0 {
		t.Fatalf("set-aside files left behind: %v", m)
	}
}

func TestWritePair_Canceled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	train, test := pair()

	_, err := CSV{Dir: dir}.WritePair(ctx, RawNames, train, test)
	if !perr.IsCode(err, perr.ErrorCodeProcessing) {
		t.Fatalf("want processing error, got %v", err)
	}
	assertNoOutputs(t, dir)
}

func TestWrite_DirIsFile(t *testing.T) {
	base := t.TempDir()
	file := testkit.WriteFile(t, base, "occupied", "x")
	train, test := pair()
	_, err := CSV{Dir: file}.WritePair(context.Background(), RawNames, train, test)
	if !perr.IsCode(err, perr.ErrorCodeProcessing) {
		t.Fatalf("want processing error, got %v", err)
	}
}

func TestPair_Write(t *testing.T) {
	dir := t.TempDir()
	train, test := pair()
	paths, err := Pair{Sink: CSV{Dir: dir}, Names: ProcessedNames}.Write(context.Background(), train, test)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if filepath.Base(paths[0]) != "train_processed.csv" || filepath.Base(paths[1]) != "test_processed.csv" {
		t.Fatalf("paths = %v", paths)
	}
}
