package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/domain/correlation"
	"github.com/kailas-cloud/wsdlab/internal/domain/gold"
	"github.com/kailas-cloud/wsdlab/internal/domain/run"
	"github.com/kailas-cloud/wsdlab/internal/stats"
)

// --- Mocks ---

type mockDatasets struct {
	data map[gold.DatasetKey][]gold.Pair
	err  error
}

func (m *mockDatasets) Load(_ context.Context, key gold.DatasetKey) ([]gold.Pair, error) {
	if m.err != nil {
		return nil, m.err
	}
	pairs, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	return pairs, nil
}

type mockOracle struct {
	scores map[string]float64
	calls  atomic.Int32
}

func (m *mockOracle) Similarity(_ context.Context, a, b string) (float64, bool) {
	m.calls.Add(1)
	v, ok := m.scores[a+"|"+b]
	return v, ok
}

type mockSource struct {
	name   string
	scores map[string]float64
	vocab  map[string]bool
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Contains(_ context.Context, w string) bool { return m.vocab[w] }

func (m *mockSource) Similarity(_ context.Context, a, b string) (float64, error) {
	v, ok := m.scores[a+"|"+b]
	if !ok {
		return 0, errors.New("no vector")
	}
	return v, nil
}

type mockRuns struct {
	saved *run.Run
	err   error
}

func (m *mockRuns) Create(_ context.Context, rn *run.Run) error {
	if m.err != nil {
		return m.err
	}
	rn.ID = "01TEST"
	m.saved = rn
	return nil
}

var monotone = []gold.Pair{
	{WordA: "car", WordB: "automobile", Human: 3.9},
	{WordA: "coast", WordB: "shore", Human: 3.6},
	{WordA: "noon", WordB: "string", Human: 0.1},
}

func newSource(name string, scores map[string]float64) *mockSource {
	vocab := map[string]bool{}
	for _, p := range monotone {
		vocab[p.WordA] = true
		vocab[p.WordB] = true
	}
	return &mockSource{name: name, scores: scores, vocab: vocab}
}

func newTestService(o Oracle, sources ...EmbeddingSource) (*Service, *mockRuns) {
	runs := &mockRuns{}
	ds := &mockDatasets{data: map[gold.DatasetKey][]gold.Pair{gold.MC: monotone}}
	return New(ds, o, sources, runs, 2, zap.NewNop()), runs
}

// --- Correlate ---

func TestCorrelate_MonotoneOracle(t *testing.T) {
	o := &mockOracle{scores: map[string]float64{
		"car|automobile": 0.9, "coast|shore": 0.7, "noon|string": 0.05,
	}}
	svc, _ := newTestService(o)

	rep, err := svc.Correlate(context.Background(), []gold.DatasetKey{gold.MC}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rho := rep.Results[gold.MC][correlation.MethodOracle]
	if rho == nil || math.Abs(*rho-1.0) > 1e-9 {
		t.Errorf("wikisim = %v, want 1.0", rho)
	}
	if rep.RunID != "" {
		t.Errorf("unexpected run id %q", rep.RunID)
	}
}

func TestCorrelate_OracleUnavailableKeepsEmbeddings(t *testing.T) {
	glove := newSource("glove", map[string]float64{
		"car|automobile": 0.8, "coast|shore": 0.4, "noon|string": 0.6,
	})
	svc, _ := newTestService(&mockOracle{}, glove)

	rep, err := svc.Correlate(context.Background(), []gold.DatasetKey{gold.MC}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := rep.Results[gold.MC]
	if v, ok := res[correlation.MethodOracle]; !ok || v != nil {
		t.Errorf("wikisim = %v (present=%v), want null", v, ok)
	}
	want := stats.Spearman([]float64{3.9, 3.6, 0.1}, []float64{0.8, 0.4, 0.6})
	if got := res["glove"]; got == nil || math.Abs(*got-want) > 1e-9 {
		t.Errorf("glove = %v, want %v", got, want)
	}
}

func TestCorrelate_NilOracle(t *testing.T) {
	svc, _ := newTestService(nil)
	rep, err := svc.Correlate(context.Background(), []gold.DatasetKey{gold.MC}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Results[gold.MC][correlation.MethodOracle] != nil {
		t.Error("expected null wikisim")
	}
}

func TestCorrelate_PartialScoresUseScoredPairsOnly(t *testing.T) {
	o := &mockOracle{scores: map[string]float64{"car|automobile": 0.9, "noon|string": 0.1}}
	svc, _ := newTestService(o)

	rep, err := svc.Correlate(context.Background(), []gold.DatasetKey{gold.MC}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rho := rep.Results[gold.MC][correlation.MethodOracle]; rho == nil || math.Abs(*rho-1) > 1e-9 {
		t.Errorf("wikisim = %v, want 1", rho)
	}
}

func TestCorrelate_UnknownDataset(t *testing.T) {
	svc, _ := newTestService(&mockOracle{})
	_, err := svc.Correlate(context.Background(), []gold.DatasetKey{"SIMLEX"}, false)
	if !errors.Is(err, domain.ErrUnknownDataset) || !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrUnknownDataset, got %v", err)
	}
}

func TestCorrelate_LoadFailureStopsBeforeScoring(t *testing.T) {
	o := &mockOracle{scores: map[string]float64{"car|automobile": 1}}
	svc, _ := newTestService(o)

	// RG is not in the mock data.
	_, err := svc.Correlate(context.Background(), []gold.DatasetKey{gold.MC, gold.RG}, false)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if o.calls.Load() != 0 {
		t.Errorf("oracle called %d times before load finished", o.calls.Load())
	}
}

func TestCorrelate_Persist(t *testing.T) {
	o := &mockOracle{scores: map[string]float64{
		"car|automobile": 0.9, "coast|shore": 0.7, "noon|string": 0.05,
	}}
	svc, runs := newTestService(o, newSource("glove", nil))

	rep, err := svc.Correlate(context.Background(), []gold.DatasetKey{gold.MC}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.RunID != "01TEST" {
		t.Errorf("run id = %q", rep.RunID)
	}
	if runs.saved.Kind != run.KindCorrelation || runs.saved.Count != 1 {
		t.Errorf("saved run = %+v", runs.saved)
	}

	var items map[string]map[string]*float64
	if err := json.Unmarshal(runs.saved.Items, &items); err != nil {
		t.Fatalf("items: %v", err)
	}
	if items["MC"]["glove"] != nil {
		t.Error("expected null glove in stored items")
	}
}

func TestCorrelate_PersistFailure(t *testing.T) {
	svc, runs := newTestService(&mockOracle{})
	runs.err = errors.New("disk full")

	if _, err := svc.Correlate(context.Background(), []gold.DatasetKey{gold.MC}, true); err == nil {
		t.Fatal("expected error")
	}
}

func TestCorrelate_Cancelled(t *testing.T) {
	svc, _ := newTestService(&mockOracle{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Correlate(ctx, []gold.DatasetKey{gold.MC}, false); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMeasures(t *testing.T) {
	svc, _ := newTestService(nil, newSource("word2vec", nil), newSource("glove", nil))
	got := svc.Measures()
	want := []string{"wikisim", "word2vec", "glove"}
	if len(got) != len(want) {
		t.Fatalf("measures = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("measures[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
