package sheets

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrNotConfigured GOOGLE_SERVICE_ACCOUNT_EMAIL / GOOGLE_PRIVATE_KEY / GOOGLE_SHEETS_ID 중 하나가 없음
	ErrNotConfigured = errors.New("google sheets environment variables are not set")

	// ErrPermissionDenied 서비스 계정이 스프레드시트에 공유되지 않음
	ErrPermissionDenied = errors.New("google sheets permission denied")

	// ErrSpreadsheetNotFound 스프레드시트 ID 가 잘못됨
	ErrSpreadsheetNotFound = errors.New("google spreadsheet not found")

	// ErrUnknownTab 스키마에 없는 탭
	ErrUnknownTab = errors.New("unknown sheet tab")
)

// Classify Google API 에러를 sentinel 로 감싼다
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrSpreadsheetNotFound, err)
		}
	}
	return err
}
