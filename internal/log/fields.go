package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOwner     = "owner"
	FieldUser      = "username"
	FieldCategory  = "category"
	FieldCurrency  = "currency"
	FieldMonth     = "month"
	FieldRow       = "row"
	FieldImported  = "imported"
	FieldSkipped   = "skipped"
	FieldBudget    = "budget"
	FieldSpent     = "spent"
	FieldRecipient = "recipient"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentImport  = "import"
	ComponentReport  = "report"
	ComponentBudget  = "budget"
	ComponentAnomaly = "anomaly"
	ComponentLedger  = "ledger"
	ComponentWorker  = "worker"
	ComponentSeed    = "seed"
)
