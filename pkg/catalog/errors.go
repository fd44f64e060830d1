package catalog

import "errors"

var (
	// ErrNotConfigured 스크립트 URL 이 비어 있음
	ErrNotConfigured = errors.New("catalog script url not configured")

	// ErrNetworkError 스크립트 엔드포인트에 연결하지 못함
	ErrNetworkError = errors.New("network error")

	// ErrUpstream 2xx 가 아닌 응답
	ErrUpstream = errors.New("catalog upstream error")

	// ErrInvalidResponse 응답 본문을 해석할 수 없음
	ErrInvalidResponse = errors.New("invalid catalog response")
)
