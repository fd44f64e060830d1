package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/pkg/catalog"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelay struct {
	mu   sync.Mutex
	got  []catalog.PartnerApplication
	done chan struct{}
}

func (r *fakeRelay) RelayPartnerApplication(ctx context.Context, app catalog.PartnerApplication) error {
	r.mu.Lock()
	r.got = append(r.got, app)
	r.mu.Unlock()
	close(r.done)
	return nil
}

func validApplyInput() PartnerApplyInput {
	return PartnerApplyInput{
		CompanyName:    "데모 쇼핑몰",
		BusinessNumber: "1234567890",
		CeoName:        "김대표",
		ManagerName:    "이담당",
		ManagerPhone:   "01012345678",
		ManagerEmail:   "manager@example.com",
		ShopType:       "회원제 쇼핑몰",
	}
}

func TestPartnerRequestService_ApplyAndApprove(t *testing.T) {
	env := setupServiceTest(t)

	req, err := env.requests.Apply(validApplyInput())
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, req.Status)
	assert.Equal(t, "123-45-67890", req.BusinessNumber)
	assert.Equal(t, "010-1234-5678", req.ManagerPhone)

	pending, err := env.requests.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	partner, err := env.requests.Approve(req.RequestID, "ADMIN-001", PartnerInput{
		CustomURL:     "foo",
		LoginID:       "foo",
		LoginPassword: "foo-pw",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PartnerStatusActive, partner.Status)
	assert.Equal(t, "데모 쇼핑몰", partner.CompanyName)
	assert.Equal(t, "데모 쇼핑몰", partner.LogoText)
	assert.Equal(t, "ADMIN-001", partner.ApprovedBy)

	// 승인된 파트너는 바로 랜딩 페이지가 열린다
	public, err := env.partners.GetPublicPartner("foo")
	require.NoError(t, err)
	assert.Equal(t, partner.PartnerID, public.PartnerID)

	stored, err := env.requests.GetRequest(req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, stored.Status)
	assert.Equal(t, partner.PartnerID, stored.ApprovedPartnerID)
	assert.NotNil(t, stored.ReviewedAt)

	_, err = env.requests.Approve(req.RequestID, "ADMIN-001", PartnerInput{CustomURL: "bar", LoginID: "bar", LoginPassword: "pw"})
	assert.ErrorIs(t, err, ErrRequestAlreadyReviewed)

	assert.Equal(t, []string{EventPartnerRequest, EventPartnerApproved}, env.events.Types())
}

func TestPartnerRequestService_Apply_SameMillisecond(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewPartnerRequestService(env.requestRepo, env.partnerRepo, nil, env.events, env.trigger).(*partnerRequestService)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	first, err := svc.Apply(validApplyInput())
	require.NoError(t, err)
	second, err := svc.Apply(validApplyInput())
	require.NoError(t, err)

	assert.Equal(t, util.NewPartnerRequestID(fixed), first.RequestID)
	assert.Equal(t, util.NewPartnerRequestID(fixed.Add(time.Millisecond)), second.RequestID)

	pending, err := svc.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestPartnerRequestService_Approve_Errors(t *testing.T) {
	env := setupServiceTest(t)
	env.addPartner(t, "P-1", "기존몰", "", model.PartnerStatusActive)
	req, err := env.requests.Apply(validApplyInput())
	require.NoError(t, err)

	t.Run("Missing settings", func(t *testing.T) {
		_, err := env.requests.Approve(req.RequestID, "ADMIN-001", PartnerInput{CustomURL: "x"})
		assert.ErrorIs(t, err, ErrPartnerSettingsRequired)
	})

	t.Run("Unknown request", func(t *testing.T) {
		_, err := env.requests.Approve("PR-0", "ADMIN-001", PartnerInput{CustomURL: "x", LoginID: "x", LoginPassword: "x"})
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})

	t.Run("Custom url taken rolls back", func(t *testing.T) {
		_, err := env.requests.Approve(req.RequestID, "ADMIN-001", PartnerInput{CustomURL: "url-P-1", LoginID: "fresh", LoginPassword: "x"})
		assert.ErrorIs(t, err, ErrCustomURLTaken)

		stored, err := env.requests.GetRequest(req.RequestID)
		require.NoError(t, err)
		assert.Equal(t, model.RequestStatusPending, stored.Status)
	})
}

func TestPartnerRequestService_Reject(t *testing.T) {
	env := setupServiceTest(t)
	req, err := env.requests.Apply(validApplyInput())
	require.NoError(t, err)

	require.NoError(t, env.requests.Reject(req.RequestID, "ADMIN-001"))
	assert.ErrorIs(t, env.requests.Reject(req.RequestID, "ADMIN-001"), ErrRequestAlreadyReviewed)
	assert.ErrorIs(t, env.requests.Reject("PR-0", "ADMIN-001"), ErrRequestNotFound)

	pending, err := env.requests.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPartnerRequestService_Relay(t *testing.T) {
	env := setupServiceTest(t)
	relay := &fakeRelay{done: make(chan struct{})}
	svc := NewPartnerRequestService(env.requestRepo, env.partnerRepo, relay, nil, nil)

	req, err := svc.Apply(validApplyInput())
	require.NoError(t, err)

	select {
	case <-relay.done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay was not called")
	}
	relay.mu.Lock()
	defer relay.mu.Unlock()
	require.Len(t, relay.got, 1)
	assert.Equal(t, req.RequestID, relay.got[0].RequestID)
	assert.Equal(t, "123-45-67890", relay.got[0].BusinessNo)
}
