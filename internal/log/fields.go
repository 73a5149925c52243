package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldKey       = "key"
	FieldEntryID   = "entry_id"
	FieldUserID    = "user_id"
	FieldHours     = "hours"
	FieldCity      = "city"
	FieldYear      = "year"
	FieldMonth     = "month"
	FieldRecipient = "recipient"
	FieldReminder  = "reminder_time"
	FieldMethod    = "method"
	FieldPath      = "path"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStore     = "store"
	ComponentStorage   = "storage"
	ComponentProfile   = "profile"
	ComponentScheduler = "scheduler"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentMailer    = "mailer"
	ComponentGeocode   = "geocode"
	ComponentReport    = "report"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpAdd      = "add"
	OpDelete   = "delete"
	OpSchedule = "schedule"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpSend     = "send"
	OpLookup   = "lookup"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
