package model

// ApplicationStatus 고객 신청 진행 상태
type ApplicationStatus string

const (
	StatusReceived        ApplicationStatus = "접수"
	StatusConsulting      ApplicationStatus = "상담중"
	StatusAbsent          ApplicationStatus = "부재"
	StatusRejected        ApplicationStatus = "거부"
	StatusCancelled       ApplicationStatus = "접수취소"
	StatusContracted      ApplicationStatus = "계약완료"
	StatusFirstWithdrawal ApplicationStatus = "1회출금완료"
	StatusDelivered       ApplicationStatus = "배송완료"
	StatusSettled         ApplicationStatus = "정산완료"

	// 예전 시트 데이터에만 남아 있는 값. 새로 설정할 수는 없다
	StatusContractCancelled ApplicationStatus = "계약취소"
)

// allowedTransitions 현재 상태 -> 다음 상태로 허용되는 목록
var allowedTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusReceived:        {StatusConsulting, StatusAbsent, StatusRejected, StatusCancelled, StatusContracted},
	StatusConsulting:      {StatusAbsent, StatusRejected, StatusCancelled, StatusContracted},
	StatusAbsent:          {StatusConsulting, StatusRejected, StatusCancelled, StatusContracted},
	StatusRejected:        {StatusConsulting},
	StatusCancelled:       {StatusReceived},
	StatusContracted:      {StatusFirstWithdrawal, StatusCancelled},
	StatusFirstWithdrawal: {StatusDelivered},
	StatusDelivered:       {StatusSettled},
	StatusSettled:         {},
}

// legacyTransitions 예전 값에서 빠져나가는 길. 이 상태들로 새로 바꿀 수는 없다
var legacyTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusContractCancelled: {StatusReceived},
}

// AllStatuses 화면 필터 순서
func AllStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		StatusReceived, StatusConsulting, StatusAbsent, StatusRejected, StatusCancelled,
		StatusContracted, StatusFirstWithdrawal, StatusDelivered, StatusSettled,
	}
}

// Valid 새로 설정 가능한 상태값인지
func (s ApplicationStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo 같은 상태로 다시 설정하는 것은 항상 허용 (이력만 추가됨)
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range s.transitions() {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses 현재 상태에서 고를 수 있는 다음 상태들
func (s ApplicationStatus) NextStatuses() []ApplicationStatus {
	next := s.transitions()
	out := make([]ApplicationStatus, len(next))
	copy(out, next)
	return out
}

func (s ApplicationStatus) transitions() []ApplicationStatus {
	if next, ok := allowedTransitions[s]; ok {
		return next
	}
	return legacyTransitions[s]
}

// closedStatuses 진행 중 건수에서 빠지는 상태
var closedStatuses = []ApplicationStatus{
	StatusContracted, StatusDelivered, StatusSettled, StatusRejected, StatusCancelled, StatusContractCancelled,
}

// ClosedStatuses 진행 중 집계에서 제외되는 상태 목록
func ClosedStatuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(closedStatuses))
	copy(out, closedStatuses)
	return out
}
