package practice

import (
	"github.com/abhisek/opicdrill/internal/queue"
)

// queueLoadedMsg is sent when the practice queue has been built or resumed.
type queueLoadedMsg struct {
	Queue queue.Queue
	Err   error
}
