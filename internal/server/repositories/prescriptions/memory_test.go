package prescriptions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

func TestInMemoryRepository_ListOrderAndIsolation(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, diag := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, &models.Prescription{
			PatientMedTrackID: "MTAB12CD34", DoctorID: "doc", Diagnosis: diag,
			MedicineNames: []string{"m"}, IssueDate: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &models.Prescription{PatientMedTrackID: "MTOTHER000", DoctorID: "doc2"})
	require.NoError(t, err)

	list, err := repo.ListByPatientMedTrackID(ctx, "MTAB12CD34")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Diagnosis)
	assert.Equal(t, "first", list[2].Diagnosis)

	list[0].MedicineNames[0] = "tampered"
	again, err := repo.GetByID(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "m", again.MedicineNames[0])

	byDoc, err := repo.ListByDoctorID(ctx, "doc2")
	require.NoError(t, err)
	assert.Len(t, byDoc, 1)
}

func TestInMemoryRepository_Dispense(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	p, err := repo.Create(ctx, &models.Prescription{PatientMedTrackID: "MTAB12CD34"})
	require.NoError(t, err)

	at := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	got, err := repo.Dispense(ctx, p.ID, "pharm", "ok", at)
	require.NoError(t, err)
	assert.Equal(t, at, *got.DispenseDate)
	assert.Equal(t, "pharm", got.DispensedBy)

	_, err = repo.Dispense(ctx, p.ID, "pharm2", "again", at.Add(time.Hour))
	assert.ErrorIs(t, err, common.ErrorAlreadyDispensed)

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "pharm", stored.DispensedBy)
	assert.Equal(t, at, *stored.DispenseDate)

	_, err = repo.Dispense(ctx, "missing", "pharm", "", at)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInMemoryRepository_ConcurrentDispenseExactlyOnce(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	p, err := repo.Create(ctx, &models.Prescription{PatientMedTrackID: "MTAB12CD34"})
	require.NoError(t, err)

	var (
		wg             sync.WaitGroup
		mu             sync.Mutex
		ok, alreadyCnt int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Dispense(ctx, p.ID, "pharm", "", time.Now())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, common.ErrorAlreadyDispensed):
				alreadyCnt++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 15, alreadyCnt)
}

func TestInMemoryRepository_SetAttachmentKey(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	p, err := repo.Create(ctx, &models.Prescription{})
	require.NoError(t, err)

	require.NoError(t, repo.SetAttachmentKey(ctx, p.ID, "scans/1"))
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "scans/1", got.AttachmentKey)

	assert.ErrorIs(t, repo.SetAttachmentKey(ctx, "missing", "x"), common.ErrorNotFound)
}
