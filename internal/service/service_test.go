package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"walletscore/internal/alerting"
	"walletscore/internal/config"
	"walletscore/internal/domain"
	"walletscore/internal/ingest"
	"walletscore/internal/normalize"
	"walletscore/internal/pipeline"
	"walletscore/internal/scoring"
	"walletscore/internal/storage"
)

type fakeStore struct {
	scores    map[string]float64
	upserts   int
	lastRunID string
}

func newFakeStore() *fakeStore {
	return &fakeStore{scores: make(map[string]float64)}
}

func (f *fakeStore) EnsureSchema(ctx context.Context) error { return nil }

func (f *fakeStore) UpsertScores(ctx context.Context, runID string, records []domain.ScoreRecord) error {
	f.upserts++
	f.lastRunID = runID
	for _, rec := range records {
		f.scores[rec.Wallet] = rec.Score
	}
	return nil
}

func (f *fakeStore) GetScores(ctx context.Context, wallets []string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, w := range wallets {
		if v, ok := f.scores[w]; ok {
			out[w] = v
		}
	}
	return out, nil
}

func (f *fakeStore) ListScores(ctx context.Context, limit int, ascending bool) ([]storage.ScoreRow, error) {
	return nil, nil
}

func (f *fakeStore) ListAllScores(ctx context.Context) ([]storage.ScoreRow, error) {
	return nil, nil
}

func (f *fakeStore) CountScores(ctx context.Context) (int64, error) {
	return int64(len(f.scores)), nil
}

type fakeNotifier struct {
	notes []alerting.Notification
}

func (f *fakeNotifier) Notify(ctx context.Context, note alerting.Notification) error {
	f.notes = append(f.notes, note)
	return nil
}

type fakeSource struct {
	records   []ingest.RawRecord
	malformed int
	err       error
}

func (f *fakeSource) Load(ctx context.Context) ([]ingest.RawRecord, int, error) {
	return f.records, f.malformed, f.err
}

func liquidationRecord(wallet string) ingest.RawRecord {
	return ingest.RawRecord{
		UserWallet: wallet,
		Action:     "liquidationcall",
		Timestamp:  ingest.FlexInt64(1700000000),
		ActionData: ingest.ActionData{
			Amount:        ingest.FlexString("5000000000"),
			AssetSymbol:   "USDC",
			AssetPriceUSD: ingest.FlexString("1"),
		},
	}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Alerting.Enabled = true
	cfg.Alerting.ScoreFloor = 300
	cfg.Alerting.Channels = []string{"telegram"}
	return cfg
}

func testPipeline() *pipeline.Pipeline {
	return pipeline.New(pipeline.Options{
		Assets:  normalize.Config{DefaultDecimals: 18, Decimals: map[string]int{"USDC": 6}},
		Params:  scoring.DefaultParams(),
		Workers: 1,
	}, zerolog.Nop())
}

func TestProcessTickStoresScoresAndAlertsOnFloorCrossing(t *testing.T) {
	store := newFakeStore()
	store.scores["wallet-liq"] = 450

	notifier := &fakeNotifier{}
	source := &fakeSource{records: []ingest.RawRecord{liquidationRecord("wallet-liq")}}

	svc := New(testConfig(), nil, source, testPipeline(), store, notifier, nil, zerolog.Nop())
	if err := svc.ProcessTick(context.Background(), time.Now()); err != nil {
		t.Fatalf("ProcessTick: %v", err)
	}

	if store.upserts != 1 {
		t.Fatalf("upserts = %d, want 1", store.upserts)
	}
	if store.lastRunID == "" {
		t.Fatal("run id missing on upsert")
	}
	if got := store.scores["wallet-liq"]; got >= 300 {
		t.Fatalf("stored score = %v, want below 300", got)
	}

	if len(notifier.notes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.notes))
	}
	note := notifier.notes[0]
	if note.Wallet != "wallet-liq" || note.PrevScore != 450 || note.NewScore >= 300 {
		t.Fatalf("unexpected notification %+v", note)
	}
	if note.ScoreFloor != 300 {
		t.Fatalf("note floor = %v, want 300", note.ScoreFloor)
	}
}

func TestProcessTickSkipsAlertWithoutCrossing(t *testing.T) {
	store := newFakeStore()
	// Already below the floor, so another low run is not a crossing.
	store.scores["wallet-liq"] = 250

	notifier := &fakeNotifier{}
	source := &fakeSource{records: []ingest.RawRecord{liquidationRecord("wallet-liq")}}

	svc := New(testConfig(), nil, source, testPipeline(), store, notifier, nil, zerolog.Nop())
	if err := svc.ProcessTick(context.Background(), time.Now()); err != nil {
		t.Fatalf("ProcessTick: %v", err)
	}
	if len(notifier.notes) != 0 {
		t.Fatalf("notifications = %d, want 0", len(notifier.notes))
	}
}

func TestProcessTickSkipsAlertForFirstSeenWallet(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	source := &fakeSource{records: []ingest.RawRecord{liquidationRecord("wallet-new")}}

	svc := New(testConfig(), nil, source, testPipeline(), store, notifier, nil, zerolog.Nop())
	if err := svc.ProcessTick(context.Background(), time.Now()); err != nil {
		t.Fatalf("ProcessTick: %v", err)
	}

	if len(notifier.notes) != 0 {
		t.Fatalf("notifications = %d, want 0 for wallet without baseline", len(notifier.notes))
	}
	if _, ok := store.scores["wallet-new"]; !ok {
		t.Fatal("first-seen wallet score was not stored")
	}
}

func TestProcessTickRunsHook(t *testing.T) {
	hookRuns := 0
	hook := func(ctx context.Context, res *pipeline.Result) error {
		hookRuns++
		if len(res.Records) != 1 {
			t.Fatalf("hook records = %d, want 1", len(res.Records))
		}
		return nil
	}

	source := &fakeSource{records: []ingest.RawRecord{liquidationRecord("wallet-liq")}}
	svc := New(testConfig(), nil, source, testPipeline(), nil, nil, hook, zerolog.Nop())

	if err := svc.ProcessTick(context.Background(), time.Now()); err != nil {
		t.Fatalf("ProcessTick: %v", err)
	}
	if hookRuns != 1 {
		t.Fatalf("hook runs = %d, want 1", hookRuns)
	}
}

func TestProcessTickPropagatesSourceError(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("boom")}
	svc := New(testConfig(), nil, source, testPipeline(), nil, nil, nil, zerolog.Nop())

	if err := svc.ProcessTick(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error from failing source")
	}
}
