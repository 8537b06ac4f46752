// Package audit implements the append-only operation log.
// Every font and font group mutation records one entry naming the
// operation and whether it succeeded. Recording is best-effort and
// never affects the outcome of the operation it describes.
package audit

// Operation identifies a recorded mutation.
type Operation string

const (
	OpCreateFont      Operation = "CREATE_FONT"
	OpUpdateFont      Operation = "UPDATE_FONT"
	OpDeleteFont      Operation = "DELETE_FONT"
	OpCreateFontGroup Operation = "CREATE_FONT_GROUP"
	OpUpdateFontGroup Operation = "UPDATE_FONT_GROUP"
	OpDeleteFontGroup Operation = "DELETE_FONT_GROUP"
)

// Outcome reports whether the recorded operation succeeded.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailed  Outcome = "FAILED"
)

// ForError returns OutcomeSuccess when err is nil, OutcomeFailed otherwise.
func ForError(err error) Outcome {
	if err != nil {
		return OutcomeFailed
	}
	return OutcomeSuccess
}
