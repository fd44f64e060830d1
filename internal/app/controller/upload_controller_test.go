package controller

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	apperrors "github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/internal/middleware"
	"github.com/ikkim/sangjo-partner-backend/internal/storage"
	"github.com/ikkim/sangjo-partner-backend/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	partnerID string
	err       error
}

func (f *fakePresigner) PresignLogoUpload(_ context.Context, partnerID, contentType string, size int64) (*storage.PresignedURLResponse, error) {
	f.partnerID = partnerID
	if f.err != nil {
		return nil, f.err
	}
	key := "logos/" + partnerID + "/logo.png"
	return &storage.PresignedURLResponse{
		UploadURL: "https://bucket.s3.amazonaws.com/" + key + "?X-Amz-Signature=abc",
		FileURL:   "https://cdn.example.com/" + key,
		Key:       key,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func TestUploadController_PresignLogo(t *testing.T) {
	ts := setupControllerTest(t)
	p := ts.addPartner(t, "P-1", "행복가전", "", model.PartnerStatusActive)

	fake := &fakePresigner{}
	authMW := middleware.NewAuthMiddleware(testJWTSecret, redis.NewTokenBlacklist(), ts.auth)
	ts.router.POST("/api/partner-center/logo/presign", authMW.Authenticate(), NewUploadController(fake).PresignLogo)

	t.Run("Partner uploads own logo", func(t *testing.T) {
		w := ts.do(http.MethodPost, "/api/partner-center/logo/presign", PresignLogoRequest{
			ContentType: "image/png",
			Size:        2048,
			PartnerID:   "P-OTHER",
		}, partnerToken(t, p))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		data := decode(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "logos/P-1/logo.png", data["key"])
		// 파트너는 다른 파트너 ID 를 지정할 수 없다
		assert.Equal(t, "P-1", fake.partnerID)
	})

	t.Run("Admin picks partner", func(t *testing.T) {
		w := ts.do(http.MethodPost, "/api/partner-center/logo/presign", PresignLogoRequest{
			ContentType: "image/png",
			Size:        2048,
			PartnerID:   "P-1",
		}, adminToken(t))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "P-1", fake.partnerID)
	})

	t.Run("Missing size", func(t *testing.T) {
		w := ts.do(http.MethodPost, "/api/partner-center/logo/presign", map[string]string{"contentType": "image/png"}, partnerToken(t, p))
		assertError(t, w, http.StatusBadRequest, apperrors.ValidationInvalidInput)
	})

	t.Run("Storage rejects type", func(t *testing.T) {
		fake.err = storage.ErrContentTypeInvalid
		defer func() { fake.err = nil }()

		w := ts.do(http.MethodPost, "/api/partner-center/logo/presign", PresignLogoRequest{
			ContentType: "application/pdf",
			Size:        2048,
		}, partnerToken(t, p))
		assertError(t, w, http.StatusBadRequest, apperrors.UploadInvalidFileType)
	})
}
