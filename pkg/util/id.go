package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// KST 신청번호 날짜와 일/월 집계는 한국 시간 기준
var KST = time.FixedZone("KST", 9*60*60)

// NewPartnerID P-<unix ms>
func NewPartnerID(now time.Time) string {
	return fmt.Sprintf("P-%d", now.UnixMilli())
}

// NewPartnerRequestID PR-<unix ms>
func NewPartnerRequestID(now time.Time) string {
	return fmt.Sprintf("PR-%d", now.UnixMilli())
}

// NewApplicationNo SA-<yyyymmdd>-<4자리 난수>. 충돌은 호출 측이 unique index 로 잡아서 재시도한다
func NewApplicationNo(now time.Time) string {
	return fmt.Sprintf("SA-%s-%04d", now.In(KST).Format("20060102"), randomInt(10000))
}

// NewHistoryID H-<uuid>
func NewHistoryID() string {
	return "H-" + uuid.NewString()
}

// NewRequestID 요청 추적용 id
func NewRequestID() string {
	return uuid.NewString()
}

func randomInt(max int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return time.Now().UnixNano() % max
	}
	return n.Int64()
}
