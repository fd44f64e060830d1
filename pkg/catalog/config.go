package catalog

import "time"

// Config 외부 스크립트 엔드포인트 설정
type Config struct {
	// ScriptURL 상품 카탈로그와 신청 릴레이를 받는 스크립트 배포 URL
	ScriptURL string

	// Timeout HTTP 요청 타임아웃 (기본 30초)
	Timeout time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ScriptURL == "" {
		return ErrNotConfigured
	}
	return nil
}
