package runtime

// QueueFlushPolicy configures when the loop runs scheduled callbacks.
type QueueFlushPolicy int

const (
	// FlushOnMessageAndTick flushes after any message or tick.
	FlushOnMessageAndTick QueueFlushPolicy = iota
	// FlushOnMessage flushes after messages except TickMsg.
	FlushOnMessage
	// FlushOnTick flushes only on TickMsg.
	FlushOnTick
	// FlushManual flushes only on QueueFlushMsg.
	FlushManual
)

func (p QueueFlushPolicy) String() string {
	switch p {
	case FlushOnMessageAndTick:
		return "message+tick"
	case FlushOnMessage:
		return "message"
	case FlushOnTick:
		return "tick"
	case FlushManual:
		return "manual"
	default:
		return "unknown"
	}
}

func shouldFlushQueue(policy QueueFlushPolicy, msg Message) bool {
	if _, ok := msg.(QueueFlushMsg); ok {
		return true
	}
	if policy == FlushManual {
		return false
	}
	_, isTick := msg.(TickMsg)
	switch policy {
	case FlushOnMessage:
		return !isTick
	case FlushOnTick:
		return isTick
	default:
		return true
	}
}
