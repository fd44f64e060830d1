package repository

import (
	"gorm.io/gorm"
)

// dirty 시트에 다시 반영해야 하는 변경에 붙인다
func dirty(fields map[string]interface{}) map[string]interface{} {
	fields["sheet_synced"] = false
	fields["sync_version"] = gorm.Expr("sync_version + ?", 1)
	return fields
}

// markSynced 읽었을 때의 버전이 그대로인 행만 반영 완료로 표시한다.
// 그 사이에 바뀐 행은 false 를 돌려주고 다음 실행에서 다시 쓴다
func markSynced(db *gorm.DB, model interface{}, keyColumn, key string, version int64) (bool, error) {
	result := db.Model(model).
		Where(keyColumn+" = ? AND sync_version = ?", key, version).
		UpdateColumn("sheet_synced", true)
	return result.RowsAffected > 0, result.Error
}
