package errcode

// Error-code vocabulary for websocket/notify payloads:
// - 0: no error
// - 4xxx: recoverable business conditions (flow may continue)
// - 5xxx: system errors (flow aborted)
const (
	OK              = 0
	ResourceMissing = 4004
	EmptyReport     = 4102
	SystemError     = 5000
)
