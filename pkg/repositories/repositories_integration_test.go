package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/apperrors"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/database"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/testhelpers"
)

func createLead(t *testing.T, repo LeadRepository) *models.Lead {
	t.Helper()
	lead := &models.Lead{Name: "Ana Costa", Stage: models.StageNew, CreatedBy: uuid.New()}
	require.NoError(t, repo.Create(context.Background(), lead))
	return lead
}

func createProperty(t *testing.T, repo PropertyRepository) *models.Property {
	t.Helper()
	property := &models.Property{Title: "Dock Flat", Status: models.PropertyStatusActive, CreatedBy: uuid.New()}
	require.NoError(t, repo.Create(context.Background(), property))
	return property
}

func TestLeadRepository_Integration(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	t.Cleanup(func() { tdb.Truncate(t, "deals", "leads", "properties") })
	repo := NewLeadRepository(tdb.DB)
	ctx := context.Background()

	email := "ana@example.com"
	lead := &models.Lead{
		Name:        "Ana Costa",
		Email:       &email,
		Stage:       models.StageNew,
		Preferences: models.JSONBMap{"bedrooms": float64(2)},
		CreatedBy:   uuid.New(),
	}
	require.NoError(t, repo.Create(ctx, lead))

	got, err := repo.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.Name, got.Name)
	require.NotNil(t, got.Email)
	assert.Equal(t, email, *got.Email)
	assert.Equal(t, lead.Preferences, got.Preferences)

	require.NoError(t, repo.UpdateStage(ctx, lead.ID, models.StageNegotiating))
	got, err = repo.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageNegotiating, got.Stage)

	leads, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, leads, 1)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateStage(ctx, uuid.New(), models.StageClosed), apperrors.ErrNotFound)
}

func TestDealRepository_Integration(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	t.Cleanup(func() { tdb.Truncate(t, "deals", "leads", "properties") })
	repo := NewDealRepository(tdb.DB)
	ctx := context.Background()

	lead := createLead(t, NewLeadRepository(tdb.DB))
	property := createProperty(t, NewPropertyRepository(tdb.DB))

	commission := decimal.RequireFromString("4500.50")
	txDate := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	deal := &models.Deal{
		LeadID:           lead.ID,
		PropertyID:       property.ID,
		DealType:         models.DealTypeSale,
		Status:           models.DealStatusNegotiating,
		CommissionAmount: &commission,
		TransactionDate:  &txDate,
		CreatedBy:        uuid.New(),
	}
	require.NoError(t, repo.Create(ctx, deal))

	got, err := repo.GetByID(ctx, deal.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CommissionAmount)
	assert.True(t, got.CommissionAmount.Equal(commission))
	require.NotNil(t, got.TransactionDate)
	assert.Equal(t, txDate.Format("2006-01-02"), got.TransactionDate.Format("2006-01-02"))

	got.Status = models.DealStatusClosedWin
	require.NoError(t, repo.Update(ctx, got))

	deals, err := repo.ListByLead(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, models.DealStatusClosedWin, deals[0].Status)

	require.NoError(t, repo.Delete(ctx, deal.ID))
	_, err = repo.GetByID(ctx, deal.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, deal.ID), apperrors.ErrNotFound)
}

func TestDealRepository_LatestClosedWin(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	t.Cleanup(func() { tdb.Truncate(t, "deals", "leads", "properties") })
	repo := NewDealRepository(tdb.DB)
	ctx := context.Background()

	lead := createLead(t, NewLeadRepository(tdb.DB))
	property := createProperty(t, NewPropertyRepository(tdb.DB))

	winner, err := repo.LatestClosedWin(ctx, property.ID)
	require.NoError(t, err)
	assert.Nil(t, winner, "a property without wins has no winning deal")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	statuses := []struct {
		status models.DealStatus
		dtype  models.DealType
		at     time.Time
	}{
		{models.DealStatusClosedWin, models.DealTypeSale, base},
		{models.DealStatusClosedWin, models.DealTypeRent, base.Add(time.Hour)},
		{models.DealStatusClosedLoss, models.DealTypeSale, base.Add(2 * time.Hour)},
	}
	for _, s := range statuses {
		deal := &models.Deal{
			LeadID:     lead.ID,
			PropertyID: property.ID,
			DealType:   s.dtype,
			Status:     s.status,
			CreatedBy:  uuid.New(),
			CreatedAt:  s.at,
		}
		require.NoError(t, repo.Create(ctx, deal))
	}

	winner, err = repo.LatestClosedWin(ctx, property.ID)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, models.DealTypeRent, winner.DealType,
		"the most recent CLOSED_WIN decides, losses do not count")
}

func TestPropertyRepository_Integration(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	t.Cleanup(func() { tdb.Truncate(t, "deals", "leads", "properties") })
	repo := NewPropertyRepository(tdb.DB)
	ctx := context.Background()

	price := decimal.RequireFromString("350000.00")
	property := &models.Property{
		Title:     "Dock Flat",
		Price:     &price,
		Status:    models.PropertyStatusDraft,
		CreatedBy: uuid.New(),
	}
	require.NoError(t, repo.Create(ctx, property))

	require.NoError(t, repo.UpdateStatus(ctx, property.ID, models.PropertyStatusSold))
	got, err := repo.GetByID(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusSold, got.Status)
	require.NotNil(t, got.Price)
	assert.True(t, got.Price.Equal(price))

	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), models.PropertyStatusActive), apperrors.ErrNotFound)
}

func TestAuditRepository_Integration(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	t.Cleanup(func() { tdb.Truncate(t, "crm_audit_log") })
	repo := NewAuditRepository(tdb.DB)
	ctx := context.Background()

	leadID := uuid.New()
	entry := &models.AuditLogEntry{
		Action:   models.AuditActionSetLeadStage,
		Entity:   models.AuditEntityLead,
		EntityID: &leadID,
		ActorID:  uuid.New(),
		Metadata: models.JSONBMap{"from": "NEW", "to": "CONTACTED"},
	}
	require.NoError(t, repo.Create(ctx, entry))

	entries, err := repo.GetByEntity(ctx, models.AuditEntityLead, leadID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionSetLeadStage, entries[0].Action)
	assert.Equal(t, "CONTACTED", entries[0].Metadata["to"])
}

func TestLeadRepository_StoreFailureWrapsPersistence(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	ctx := context.Background()

	// A dedicated pool, closed before use so reads and writes fail at
	// the store layer.
	db, err := database.Connect(ctx, &tdb.Config)
	require.NoError(t, err)
	db.Close()

	repo := NewLeadRepository(db)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)

	err = repo.Create(ctx, &models.Lead{Name: "Ana Costa"})
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}
