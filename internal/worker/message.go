package worker

// KindSkipWaiting tells a waiting worker to activate immediately instead
// of waiting for all controlled pages to close. It is the only message
// kind in the protocol.
const KindSkipWaiting = "skip-waiting"

// Message is a control message sent from a page to a worker. No payload
// beyond the kind discriminator, and no response message is defined.
type Message struct {
	Kind string `json:"kind"`
}
