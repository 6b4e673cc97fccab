package contract

// DeliveryType is chosen once at the start of a session and never changes
// until the session is cleared.
type DeliveryType string

const (
	DeliveryCargo DeliveryType = "cargo"
	DeliveryWhite DeliveryType = "white"
)

// Step is a position in the fixed dialogue sequence. Steps only advance
// forward; the only way back is a full restart.
type Step string

const (
	StepType          Step = "type"
	StepWeight        Step = "weight"
	StepVolumePerUnit Step = "volumePerUnit"
	StepCount         Step = "count"
	StepVolume        Step = "volume"
	StepPrice         Step = "price"
	StepDescription   Step = "description"
	StepComplete      Step = "complete"
)

// Field keys as they appear in the dictionary sheet and the prompt table.
const (
	FieldWeight        = "weight"
	FieldVolumePerUnit = "volumePerUnit"
	FieldCount         = "count"
	FieldVolume        = "volume"
	FieldPrice         = "price"
	FieldDescription   = "description"
)

// Submission carries one completed field set to the row store.
type Submission struct {
	UserID        string
	Type          DeliveryType
	Weight        float64
	VolumePerUnit float64
	Count         int
	Volume        float64
	Price         float64
	Description   string
}

// HistoryRow is one persisted calculation as read back from the row store,
// already mapped from the sheet's column layout to semantic keys.
type HistoryRow struct {
	Date   string
	Type   string
	Weight string
	Volume string
	Price  string
	Result string
}
