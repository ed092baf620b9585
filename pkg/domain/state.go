package domain

// State defines where the protocol cursor currently stands.
type State string

const (
	StateActive           State = "active"            // Current transfer awaits a decision
	StatePlateComplete    State = "plate_complete"    // Every transfer of the current plate is resolved
	StateProtocolComplete State = "protocol_complete" // Sink state reached
)

// Snapshot is the read-only cursor view handed to renderers and record writers.
type Snapshot struct {
	// State is derived from the cursor and the plate counters.
	State State `json:"state"`

	// PlateIndex and TransferIndex address the cursor inside the plate groups.
	PlateIndex    int `json:"plate_index"`
	TransferIndex int `json:"transfer_index"`

	// SequenceIndex is the cursor position in the global sequence.
	SequenceIndex int `json:"sequence_index"`

	PlateName string   `json:"plate_name"`
	DestPlate string   `json:"dest_plate"`
	Current   Transfer `json:"current"`

	CanUndo bool `json:"can_undo"`

	// PlateRemaining counts uncompleted transfers in the current plate.
	PlateRemaining int `json:"plate_remaining"`

	NumPlates    int `json:"num_plates"`
	NumTransfers int `json:"num_transfers"`
}
