package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/auth"
	"invoicer/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[string]model.User
	err   error
}

func (r *fakeUserRepo) UpsertByGoogleID(_ context.Context, user *model.User) error {
	if r.err != nil {
		return r.err
	}
	if r.users == nil {
		r.users = map[string]model.User{}
	}
	existing, ok := r.users[user.GoogleID]
	if ok {
		user.ID = existing.ID
	} else {
		user.ID = uuid.New()
	}
	r.users[user.GoogleID] = *user
	return nil
}

func (r *fakeUserRepo) GetByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	u, ok := r.users[googleID]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &u, nil
}

type stubVerifier struct {
	identity auth.Identity
	err      error
}

func (s stubVerifier) Verify(context.Context, string) (auth.Identity, error) { return s.identity, s.err }

func TestGoogleLogin(t *testing.T) {
	users := &fakeUserRepo{}
	audits := &fakeAuditRepo{}
	issuer := auth.NewIssuer([]byte("secret"), time.Hour)
	svc := NewAuthService(users, stubVerifier{identity: alice}, issuer, NewAuditService(audits))

	res, err := svc.GoogleLogin(context.Background(), GoogleLoginRequest{IDToken: "google-token"})
	require.NoError(t, err)

	assert.Equal(t, "alice-sub", res.User.GoogleID)
	assert.NotEmpty(t, res.User.ID)

	identity, err := issuer.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, alice, identity)

	require.Len(t, audits.logs, 1)
	assert.Equal(t, model.ActionGoogleSignIn, audits.logs[0].Action)
}

func TestGoogleLogin_Failures(t *testing.T) {
	issuer := auth.NewIssuer([]byte("secret"), time.Hour)

	svc := NewAuthService(&fakeUserRepo{}, stubVerifier{err: apperror.ErrUnauthorized}, issuer, NewAuditService(&fakeAuditRepo{}))
	_, err := svc.GoogleLogin(context.Background(), GoogleLoginRequest{IDToken: "bad"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.GoogleLogin(context.Background(), GoogleLoginRequest{})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	svc = NewAuthService(&fakeUserRepo{err: apperror.ErrStoreUnavailable}, stubVerifier{identity: alice}, issuer, NewAuditService(&fakeAuditRepo{}))
	_, err = svc.GoogleLogin(context.Background(), GoogleLoginRequest{IDToken: "ok"})
	assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)
}

func TestAuditService_RecordIsBestEffort(t *testing.T) {
	audits := &fakeAuditRepo{err: errors.New("disk full")}
	svc := NewAuditService(audits)

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), &model.AuditLog{UserID: "alice", Action: model.ActionGoogleSignIn})
	})

	audits.err = nil
	svc.Record(context.Background(), &model.AuditLog{UserID: "alice", Action: model.ActionGoogleSignIn})
	logs, total, err := svc.ListAuditLogs(context.Background(), "alice", AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, model.ActionGoogleSignIn, logs[0].Action)

	_, _, err = svc.ListAuditLogs(context.Background(), "", AuditFilter{})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestAuditService_FiltersByEntityAndAction(t *testing.T) {
	audits := &fakeAuditRepo{}
	svc := NewAuditService(audits)
	ctx := context.Background()

	svc.Record(ctx, &model.AuditLog{UserID: "alice", Action: model.ActionCreateInvoice, EntityID: "inv-1"})
	svc.Record(ctx, &model.AuditLog{UserID: "alice", Action: model.ActionRecordPayment, EntityID: "inv-1"})
	svc.Record(ctx, &model.AuditLog{UserID: "alice", Action: model.ActionCreateInvoice, EntityID: "inv-2"})

	_, total, err := svc.ListAuditLogs(ctx, "alice", AuditFilter{EntityID: "inv-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	logs, total, err := svc.ListAuditLogs(ctx, "alice", AuditFilter{Action: model.ActionCreateInvoice})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, model.ActionCreateInvoice, logs[1].Action)
}
