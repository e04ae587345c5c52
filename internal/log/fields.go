package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldAccountID  = "account_id"
	FieldPersona    = "persona"
	FieldStrategy   = "strategy"
	FieldWindowDays = "window_days"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentSignals    = "signals"
	ComponentClassifier = "classifier"
	ComponentAdvisor    = "advisor"
	ComponentPayoff     = "payoff"
	ComponentCache      = "cache"
)

// Operations defines standard operation names
const (
	OpDetect   = "detect"
	OpClassify = "classify"
	OpRank     = "rank"
	OpGate     = "gate"
	OpSimulate = "simulate"
	OpPublish  = "publish"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
