package register

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/signoff/internal/roster"
	"github.com/roach88/signoff/internal/store"
	"github.com/roach88/signoff/internal/testutil"
)

const testRosterCUE = `
drivers: [
	{staff_number: "D-100", name: "Alice Crane"},
	{staff_number: "D-200", name: "bob stone"},
	{staff_number: "D-300", name: "Carol Mendez"},
]
`

var testStart = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestRegister(t *testing.T, opts ...Option) *Register {
	t.Helper()

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ros, err := roster.Parse("roster.cue", []byte(testRosterCUE))
	require.NoError(t, err)

	defaults := []Option{
		WithClock(testutil.NewClock(testStart, time.Minute)),
		WithTokens(testutil.NewTokens()),
	}
	return New(context.Background(), s, ros, append(defaults, opts...)...)
}

// stampSentinel overwrites the record blob's updated_at column so a later
// comparison reveals whether any persistence write happened in between.
func stampSentinel(t *testing.T, s *store.Store) {
	t.Helper()
	_, err := s.DB().Exec(`UPDATE blobs SET updated_at = 'sentinel' WHERE ns = ?`, store.Namespace)
	require.NoError(t, err)
}

func blobStamp(t *testing.T, s *store.Store) string {
	t.Helper()
	var stamp string
	err := s.DB().QueryRow(`SELECT updated_at FROM blobs WHERE ns = ?`, store.Namespace).Scan(&stamp)
	require.NoError(t, err)
	return stamp
}

// CreateOrLoad

func TestCreateOrLoad_CreatesNewRecord(t *testing.T) {
	reg := newTestRegister(t)

	rec, created, err := reg.CreateOrLoad(context.Background(), "Forklift Safety", "2024-03-01")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "2024-03-01|Forklift Safety", rec.ID)
	assert.Equal(t, "Forklift Safety", rec.Name)
	assert.Equal(t, "2024-03-01", rec.Date)
	assert.Equal(t, "2024-03-01T09:00:00Z", rec.CreatedAt)
	assert.Empty(t, rec.Signatures)
	assert.Equal(t, 1, reg.Len())
}

func TestCreateOrLoad_SecondCallLoadsExisting(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	first, created, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	// createdAt is set once; the clock has moved but the stamp has not
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 1, reg.Len(), "no duplicate entry")
}

func TestCreateOrLoad_LoadPerformsNoWrite(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	_, _, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)

	stampSentinel(t, reg.store)
	_, created, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)
	require.False(t, created)

	assert.Equal(t, "sentinel", blobStamp(t, reg.store), "loading an existing record must not write")
}

func TestCreateOrLoad_TrimsSurroundingWhitespaceOnly(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	rec, _, err := reg.CreateOrLoad(ctx, "  Forklift Safety  ", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "Forklift Safety", rec.Name)
	assert.Equal(t, "2024-03-01|Forklift Safety", rec.ID)

	// Interior whitespace is identity: a doubled space is a different record
	other, created, err := reg.CreateOrLoad(ctx, "Forklift  Safety", "2024-03-01")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, rec.ID, other.ID)
}

func TestCreateOrLoad_CaseSensitiveIdentity(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	_, created, err := reg.CreateOrLoad(ctx, "PPE Boots", "2024-03-01")
	require.NoError(t, err)
	require.True(t, created)

	_, created, err = reg.CreateOrLoad(ctx, "ppe boots", "2024-03-01")
	require.NoError(t, err)
	assert.True(t, created, "case differences produce distinct records")
	assert.Equal(t, 2, reg.Len())
}

func TestCreateOrLoad_EmptyName_Validation(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	for _, name := range []string{"", "   ", "\t\n"} {
		rec, created, err := reg.CreateOrLoad(ctx, name, "2024-03-01")
		assert.Nil(t, rec)
		assert.False(t, created)
		assert.True(t, IsValidation(err), "name %q: got %v", name, err)
	}

	assert.Equal(t, 0, reg.Len(), "store unchanged after rejected creation")
	_, ok := reg.Active()
	assert.False(t, ok, "no record became active")
}

func TestCreateOrLoad_MalformedDate_Validation(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	for _, date := range []string{"2024-3-1", "01-03-2024", "2024-02-30", "yesterday"} {
		_, _, err := reg.CreateOrLoad(ctx, "Forklift Safety", date)
		assert.True(t, IsValidation(err), "date %q: got %v", date, err)
	}
	assert.Equal(t, 0, reg.Len())
}

func TestCreateOrLoad_DefaultsToCurrentDay(t *testing.T) {
	reg := newTestRegister(t)

	rec, _, err := reg.CreateOrLoad(context.Background(), "Forklift Safety", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", rec.Date)
	assert.Equal(t, "2024-03-01|Forklift Safety", rec.ID)
}

func TestCreateOrLoad_BecomesActive(t *testing.T) {
	reg := newTestRegister(t)

	rec, _, err := reg.CreateOrLoad(context.Background(), "Forklift Safety", "2024-03-01")
	require.NoError(t, err)

	active, ok := reg.Active()
	require.True(t, ok)
	assert.Equal(t, rec.ID, active.ID)
}

func TestCreateOrLoad_ReturnedRecordIsACopy(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	rec, _, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)

	rec.Name = "Tampered"
	reloaded, _, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "Forklift Safety", reloaded.Name)
}

// Select

func TestSelect_MakesRecordActive(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	_, _, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)
	_, _, err = reg.CreateOrLoad(ctx, "High-Vis Policy", "2024-03-02")
	require.NoError(t, err)

	rec, err := reg.Select("2024-03-01|Forklift Safety")
	require.NoError(t, err)
	assert.Equal(t, "Forklift Safety", rec.Name)

	active, ok := reg.Active()
	require.True(t, ok)
	assert.Equal(t, "2024-03-01|Forklift Safety", active.ID)
}

func TestSelect_UnknownID_NotFound(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	_, _, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)

	rec, err := reg.Select("2024-03-01|Nope")
	assert.Nil(t, rec)
	assert.True(t, IsNotFound(err))

	// The previously active record stays selected
	active, ok := reg.Active()
	require.True(t, ok)
	assert.Equal(t, "2024-03-01|Forklift Safety", active.ID)
}

func TestSelect_FailureLeavesNoActive(t *testing.T) {
	reg := newTestRegister(t)

	_, err := reg.Select("2024-03-01|Nope")
	assert.True(t, IsNotFound(err))

	_, ok := reg.Active()
	assert.False(t, ok)
}

// MarkReceived

func TestMarkReceived_FirstSignature(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	_, _, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)

	sig, wasNew, err := reg.MarkReceived(ctx, "D-100")
	require.NoError(t, err)
	assert.True(t, wasNew)
	assert.Equal(t, "D-100", sig.StaffNumber)
	assert.Equal(t, "Alice Crane", sig.Name, "name comes from the roster")
	assert.Equal(t, "2024-03-01T09:01:00Z", sig.Timestamp)

	active, _ := reg.Active()
	require.Len(t, active.Signatures, 1)
}

func TestMarkReceived_Idempotent(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	_, _, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)

	first, wasNew, err := reg.MarkReceived(ctx, "D-100")
	require.NoError(t, err)
	require.True(t, wasNew)

	second, wasNew, err := reg.MarkReceived(ctx, "D-100")
	require.NoError(t, err)
	assert.False(t, wasNew)

	active, _ := reg.Active()
	assert.Len(t, active.Signatures, 1, "re-signing must not duplicate")
	// Timestamp moved; everything else kept
	assert.NotEqual(t, first.Timestamp, second.Timestamp)
	assert.Equal(t, first.StaffNumber, second.StaffNumber)
	assert.Equal(t, first.Name, second.Name)
}

func TestMarkReceived_ReSignKeepsPosition(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	_, _, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)

	_, _, err = reg.MarkReceived(ctx, "D-100")
	require.NoError(t, err)
	_, _, err = reg.MarkReceived(ctx, "D-200")
	require.NoError(t, err)
	_, _, err = reg.MarkReceived(ctx, "D-100")
	require.NoError(t, err)

	active, _ := reg.Active()
	require.Len(t, active.Signatures, 2)
	assert.Equal(t, "D-100", active.Signatures[0].StaffNumber, "updated in place, not re-appended")
	assert.Equal(t, "D-200", active.Signatures[1].StaffNumber)
}

func TestMarkReceived_UnknownStaff_DriverNotFound(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	_, _, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)

	_, wasNew, err := reg.MarkReceived(ctx, "D-999")
	assert.False(t, wasNew)
	assert.True(t, IsDriverNotFound(err))

	active, _ := reg.Active()
	assert.Empty(t, active.Signatures, "signature count unchanged")
}

func TestMarkReceived_NoActiveRecord(t *testing.T) {
	reg := newTestRegister(t)

	_, _, err := reg.MarkReceived(context.Background(), "D-100")
	assert.True(t, IsNoActiveRecord(err))
}

func TestMarkReceived_PersistsBothOutcomes(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	_, _, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)

	stampSentinel(t, reg.store)
	_, _, err = reg.MarkReceived(ctx, "D-100")
	require.NoError(t, err)
	assert.NotEqual(t, "sentinel", blobStamp(t, reg.store), "first signature must persist")

	stampSentinel(t, reg.store)
	_, _, err = reg.MarkReceived(ctx, "D-100")
	require.NoError(t, err)
	assert.NotEqual(t, "sentinel", blobStamp(t, reg.store), "timestamp refresh must persist")
}

// List

func TestList_OrderedForDisplay(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	_, _, err := reg.CreateOrLoad(ctx, "Bob", "2024-01-02")
	require.NoError(t, err)
	_, _, err = reg.CreateOrLoad(ctx, "alice", "2024-01-02")
	require.NoError(t, err)
	_, _, err = reg.CreateOrLoad(ctx, "Zebra Crossing", "2024-01-01")
	require.NoError(t, err)

	out := reg.List()
	require.Len(t, out, 3)
	// Newest date first; same-date ties case-insensitively by name
	assert.Equal(t, "2024-01-02|alice", out[0].ID)
	assert.Equal(t, "2024-01-02|Bob", out[1].ID)
	assert.Equal(t, "2024-01-01|Zebra Crossing", out[2].ID)
}

func TestList_Empty(t *testing.T) {
	reg := newTestRegister(t)
	assert.Empty(t, reg.List())
}

// Persistence behavior

func TestNew_ReloadsPersistedRecords(t *testing.T) {
	reg := newTestRegister(t)
	ctx := context.Background()

	_, _, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)
	_, _, err = reg.MarkReceived(ctx, "D-100")
	require.NoError(t, err)

	// A fresh session over the same store sees the persisted mapping
	reg2 := New(ctx, reg.store, reg.roster)
	assert.Equal(t, 1, reg2.Len())

	rec, err := reg2.Select("2024-03-01|Forklift Safety")
	require.NoError(t, err)
	require.Len(t, rec.Signatures, 1)
	assert.Equal(t, "Alice Crane", rec.Signatures[0].Name)

	// The select above made a record active; a genuinely fresh session has none
	reg3 := New(ctx, reg.store, reg.roster)
	_, ok := reg3.Active()
	assert.False(t, ok, "the active pointer is transient, never persisted")
}

func TestNew_CorruptBlobStartsEmpty(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.PutBlob(ctx, store.Namespace, []byte("{corrupt")))

	ros, err := roster.Parse("roster.cue", []byte(testRosterCUE))
	require.NoError(t, err)

	reg := New(ctx, s, ros)
	assert.Equal(t, 0, reg.Len(), "corrupted persisted data yields an empty store, not a fault")

	// And the session still works from scratch
	_, created, err := reg.CreateOrLoad(ctx, "Forklift Safety", "2024-03-01")
	require.NoError(t, err)
	assert.True(t, created)
}
