package repository

import (
	"context"
	"testing"
	"time"

	"invoicer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAuditRepository_ListByUserNewestFirst(t *testing.T) {
	repo := NewAuditRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, action := range []string{model.ActionCreateInvoice, model.ActionUpdateStatus} {
		require.NoError(t, repo.Create(ctx, &model.AuditLog{
			UserID:     "alice",
			Action:     action,
			EntityID:   "inv-1",
			EntityName: "INV-001",
			Details:    datatypes.JSON(`{"status":"sent"}`),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &model.AuditLog{UserID: "bob", Action: model.ActionCreateInvoice}))

	logs, total, err := repo.ListByUser(ctx, "alice", AuditListFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionUpdateStatus, logs[0].Action)
}

func TestAuditRepository_Filters(t *testing.T) {
	repo := NewAuditRepository(newTestDB(t))
	ctx := context.Background()

	entries := []model.AuditLog{
		{UserID: "alice", Action: model.ActionCreateInvoice, EntityID: "inv-1"},
		{UserID: "alice", Action: model.ActionRecordPayment, EntityID: "inv-1"},
		{UserID: "alice", Action: model.ActionCreateInvoice, EntityID: "inv-2"},
		{UserID: "alice", Action: model.ActionGoogleSignIn},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	logs, total, err := repo.ListByUser(ctx, "alice", AuditListFilter{EntityID: "inv-1", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, logs, 2)

	logs, total, err = repo.ListByUser(ctx, "alice", AuditListFilter{Action: model.ActionCreateInvoice, Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, logs, 1)

	_, total, err = repo.ListByUser(ctx, "bob", AuditListFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}
