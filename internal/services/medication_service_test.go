package services

import (
	"context"
	"testing"

	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) addMedication(t *testing.T, name string, price, amount int, category models.MedicationCategory) *models.Medication {
	t.Helper()
	enabled := models.MedicationEnabled
	med, err := f.meds.Create(context.Background(), actorOf(f.admin), MedicationInput{
		Name:     &name,
		Price:    &price,
		Amount:   &amount,
		Category: &category,
		Status:   &enabled,
	})
	require.NoError(t, err)
	return med
}

func TestMedicationCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	med := f.addMedication(t, "Aspirin", 500, 20, models.CategoryOTC)
	assert.NotEmpty(t, med.ID)
	assert.Equal(t, models.MedicationEnabled, med.Status)
	assert.EqualValues(t, 1, f.count(t, &models.AuditLog{}, "action LIKE ?", "Created medication: Aspirin%"))

	_, err := f.meds.Create(ctx, actorOf(f.doctor), MedicationInput{Name: strPtr("x")})
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = f.meds.Create(ctx, actorOf(f.admin), MedicationInput{})
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = f.meds.Create(ctx, actorOf(f.admin), MedicationInput{Name: strPtr("x"), Price: intPtr(-1)})
	assert.Equal(t, KindInvalidInput, KindOf(err))

	plain, err := f.meds.Create(ctx, actorOf(f.admin), MedicationInput{Name: strPtr("Gauze")})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryUnknown, plain.Category)
	assert.Equal(t, models.MedicationDisabled, plain.Status)
}

func TestMedicationUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	med := f.addMedication(t, "Aspirin", 500, 20, models.CategoryOTC)

	updated, err := f.meds.Update(ctx, actorOf(f.admin), med.ID, MedicationInput{Price: intPtr(650), Amount: intPtr(20)})
	require.NoError(t, err)
	assert.Equal(t, 650, updated.Price)
	assert.Equal(t, "Aspirin", updated.Name)

	var entry models.AuditLog
	require.NoError(t, f.db.Where("action LIKE ?", "Updated medication%").First(&entry).Error)
	assert.Contains(t, entry.Action, "price 500 -> 650")
	assert.NotContains(t, entry.Action, "stock")

	_, err = f.meds.Update(ctx, actorOf(f.doctor), med.ID, MedicationInput{Price: intPtr(1)})
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = f.meds.Update(ctx, actorOf(f.admin), "missing", MedicationInput{Price: intPtr(1)})
	assert.Equal(t, KindNotFound, KindOf(err))

	bad := models.MedicationCategory("herbal")
	_, err = f.meds.Update(ctx, actorOf(f.admin), med.ID, MedicationInput{Category: &bad})
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestMedicationDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	med := f.addMedication(t, "Aspirin", 500, 20, models.CategoryOTC)

	assert.Equal(t, KindForbidden, KindOf(f.meds.Delete(ctx, actorOf(f.doctor), med.ID)))
	require.NoError(t, f.meds.Delete(ctx, actorOf(f.admin), med.ID))
	assert.EqualValues(t, 0, f.count(t, &models.Medication{}, ""))
	assert.Equal(t, KindNotFound, KindOf(f.meds.Delete(ctx, actorOf(f.admin), med.ID)))
}

func TestMedicationList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := pagination.New(1, 10)

	f.addMedication(t, "Aspirin", 500, 20, models.CategoryOTC)
	f.addMedication(t, "Amoxicillin", 1200, 5, models.CategoryPrescription)
	f.addMedication(t, "Ginseng", 3000, 0, models.CategoryTraditional)

	res, err := f.meds.List(ctx, actorOf(f.doctor), MedicationFilter{}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)

	res, err = f.meds.List(ctx, actorOf(f.admin), MedicationFilter{Search: "A"}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)

	res, err = f.meds.List(ctx, actorOf(f.admin), MedicationFilter{MinPrice: intPtr(1000), MaxPrice: intPtr(2000)}, page)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	assert.Equal(t, "Amoxicillin", res.List[0].Name)

	res, err = f.meds.List(ctx, actorOf(f.admin), MedicationFilter{MaxStock: intPtr(0)}, page)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	assert.Equal(t, "Ginseng", res.List[0].Name)

	res, err = f.meds.List(ctx, actorOf(f.admin), MedicationFilter{Category: models.CategoryOTC, MinStock: intPtr(10)}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)

	_, err = f.meds.List(ctx, actorOf(f.patient), MedicationFilter{}, page)
	assert.Equal(t, KindForbidden, KindOf(err))
}
