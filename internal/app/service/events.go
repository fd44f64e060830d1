package service

import "time"

// 실시간 알림 이벤트 종류
const (
	EventNewApplication  = "application.created"
	EventStatusChanged   = "application.status_changed"
	EventPartnerRequest  = "partner_request.created"
	EventPartnerApproved = "partner.approved"
)

// Event 파트너센터 화면으로 밀어주는 알림.
// PartnerIDs 는 이 이벤트를 볼 수 있는 파트너 (관리자는 항상 받는다). 비어 있으면 관리자 전용
type Event struct {
	Type       string      `json:"type"`
	PartnerIDs []string    `json:"-"`
	Payload    interface{} `json:"payload"`
	At         time.Time   `json:"at"`
}

// EventPublisher 웹소켓 허브가 구현한다
type EventPublisher interface {
	Publish(event Event)
}

// SyncTrigger 시트 미러 작업을 바로 돌리도록 깨운다
type SyncTrigger interface {
	Trigger()
}

// PartnerRemovalListener 삭제된 파트너를 시트 미러에 알린다. SyncTrigger 가 함께 구현할 수 있다
type PartnerRemovalListener interface {
	PartnerRemoved(partnerID string)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

type noopTrigger struct{}

func (noopTrigger) Trigger() {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func triggerOrNoop(t SyncTrigger) SyncTrigger {
	if t == nil {
		return noopTrigger{}
	}
	return t
}
