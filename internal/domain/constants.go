package domain

// Slot configuration bounds
const (
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 720
)

// Text limits
const (
	MaxReasonLength  = 500
	MaxNotesLength   = 2000
	MaxContentLength = 4000
)

// Default treatment cycle policy
const (
	DefaultSessionsPerCycle = 18
	DefaultCycleDays        = 42
)

// MaxStockQuantity caps one batch. Units of a batch are inserted in a single statement
// with 7 bind parameters per row, and PostgreSQL accepts at most 65535 per statement.
const MaxStockQuantity = 5000

// Date format
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
