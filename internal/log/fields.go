package log

// 構造化ログのフィールド名
const (
	FieldComponent = "component"
	FieldEvent     = "event"
	FieldMount     = "mount"
	FieldSessionID = "session_id"
	FieldURL       = "url"
	FieldEndpoint  = "endpoint"
	FieldCount     = "count"
)
