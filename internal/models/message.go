package models

// Chat modes. A message is either posted to the shared global room or
// exchanged privately between exactly two participants.
const (
	ModeGlobal  = "global"
	ModePrivate = "private"
)

// Message represents one stored chat utterance.
//
// Content is ciphertext at rest; plaintext only exists in memory on the
// send and read paths. Sender name/avatar are snapshots taken at send
// time and are not updated if the sender later renames.
type Message struct {
	ID             string `json:"_id"`               // ULID
	ConversationID string `json:"-"`                 // canonical grouping key
	FromID         string `json:"from"`              // sender email
	FromName       string `json:"fromName"`
	FromAvatar     string `json:"fromAvatar,omitempty"`
	ToID           string `json:"to"`                // recipient email, or "global"
	ToName         string `json:"toName,omitempty"`
	Content        string `json:"content"`           // encrypted in the store
	Mode           string `json:"chatType"`          // ModeGlobal or ModePrivate
	Timestamp      int64  `json:"timestamp"`         // Unix ms
	Seq            int64  `json:"seq,omitempty"`     // store-assigned insertion order
}
