package domain

type QueueStatus struct {
	IsOpen            bool `json:"isOpen"`
	QueueLength       int  `json:"queueLength"`
	EstimatedWaitTime int  `json:"estimatedWaitTime"` // minutes
}

// QueueTicket is the caller's place in a walk-in queue. Position is 1-based;
// zero or less means the caller has been called.
type QueueTicket struct {
	Position          int `json:"position"`
	EstimatedWaitTime int `json:"estimatedWaitTime"`
	QueueLength       int `json:"queueLength"`
}

func (t QueueTicket) Served() bool {
	return t.Position <= 0
}

func (t QueueTicket) Next() bool {
	return t.Position == 1
}
