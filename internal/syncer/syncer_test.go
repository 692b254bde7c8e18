package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matkollen/offerscraper/internal/models"
)

// fakeSource scripts GetOffers outcomes per store id.
type fakeSource struct {
	chain  models.Chain
	offers map[string][]models.Offer
	fail   map[string]string
}

func (f *fakeSource) Chain() models.Chain { return f.chain }

func (f *fakeSource) GetOffers(ctx context.Context, store models.Store) models.ScraperResult[[]models.Offer] {
	if msg, ok := f.fail[store.ID]; ok {
		return models.ScraperResult[[]models.Offer]{Success: false, Error: msg, ScrapedAt: time.Now()}
	}
	return models.ScraperResult[[]models.Offer]{Success: true, Data: f.offers[store.ID], ScrapedAt: time.Now()}
}

// fakeOfferStore mimics the transactional swap: a scripted write failure
// leaves the previous snapshot untouched.
type fakeOfferStore struct {
	snapshots map[string][]models.Offer
	failWrite map[string]error
	writes    int
}

func newFakeOfferStore() *fakeOfferStore {
	return &fakeOfferStore{
		snapshots: map[string][]models.Offer{},
		failWrite: map[string]error{},
	}
}

func (f *fakeOfferStore) ReplaceStoreOffers(ctx context.Context, storeID string, offers []models.Offer, syncedAt time.Time) error {
	f.writes++
	if err := f.failWrite[storeID]; err != nil {
		return err
	}
	f.snapshots[storeID] = offers
	return nil
}

func stores(ids ...string) []models.Store {
	out := make([]models.Store, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Store{ID: id, Chain: models.ChainICA})
	}
	return out
}

func offers(n int) []models.Offer {
	out := make([]models.Offer, n)
	for i := range out {
		out[i] = models.Offer{ID: string(rune('a' + i)), Name: "offer", OfferPrice: 10}
	}
	return out
}

func TestSyncStoresHappyPath(t *testing.T) {
	source := &fakeSource{
		chain: models.ChainICA,
		offers: map[string][]models.Offer{
			"ica-1": offers(3),
			"ica-2": offers(1),
		},
	}
	db := newFakeOfferStore()

	report := New(db).SyncStores(context.Background(), source, stores("ica-1", "ica-2"))

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, models.ChainICA, report.Chain)
	require.Len(t, report.Stores, 2)
	assert.Equal(t, 3, report.Stores[0].OfferCount)
	assert.Len(t, db.snapshots["ica-1"], 3)
	assert.Len(t, db.snapshots["ica-2"], 1)
}

func TestSyncSkipsDatabaseOnScrapeFailure(t *testing.T) {
	source := &fakeSource{
		chain: models.ChainICA,
		fail:  map[string]string{"ica-1": "navigation timed out"},
	}
	db := newFakeOfferStore()
	db.snapshots["ica-1"] = offers(5)

	report := New(db).SyncStores(context.Background(), source, stores("ica-1"))

	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Stores[0].Error, "scrape failed")
	// The previous snapshot survives and no write was even attempted.
	assert.Equal(t, 0, db.writes)
	assert.Len(t, db.snapshots["ica-1"], 5)
}

func TestSyncRollsBackOnWriteFailure(t *testing.T) {
	source := &fakeSource{
		chain:  models.ChainICA,
		offers: map[string][]models.Offer{"ica-1": offers(2)},
	}
	db := newFakeOfferStore()
	db.snapshots["ica-1"] = offers(5)
	db.failWrite["ica-1"] = errors.New("deadlock detected")

	report := New(db).SyncStores(context.Background(), source, stores("ica-1"))

	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Stores[0].Error, "persist failed")
	assert.Len(t, db.snapshots["ica-1"], 5)
}

func TestSyncOneFailureDoesNotBlockOthers(t *testing.T) {
	source := &fakeSource{
		chain: models.ChainICA,
		offers: map[string][]models.Offer{
			"ica-2": offers(4),
		},
		fail: map[string]string{"ica-1": "store page gone"},
	}
	db := newFakeOfferStore()

	report := New(db).SyncStores(context.Background(), source, stores("ica-1", "ica-2"))

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Succeeded)
	assert.Len(t, db.snapshots["ica-2"], 4)
}

func TestSyncStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{chain: models.ChainICA}
	db := newFakeOfferStore()

	report := New(db).SyncStores(ctx, source, stores("ica-1", "ica-2"))

	assert.Empty(t, report.Stores)
	assert.Equal(t, 0, db.writes)
	assert.False(t, report.FinishedAt.IsZero())
}
