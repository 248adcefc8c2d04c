package train

// StepOutcome is the result of advancing a train.
type StepOutcome uint8

const (
	// StepCompleted is returned when the train moved normally.
	StepCompleted StepOutcome = iota
	// StepRetry is returned when a cart's entity went missing during the step. The step did not count and
	// is tried again after the missing carts are dropped.
	StepRetry
	// StepSplit is returned when two carts were no longer linked and the train was split. The rest of the
	// tick is skipped.
	StepSplit
	// StepUnloaded is returned when the train was stored offline because its chunks went away.
	StepUnloaded
	// StepRemoved is returned when the train became empty or invalid and was removed.
	StepRemoved
)

func (o StepOutcome) String() string {
	switch o {
	case StepCompleted:
		return "completed"
	case StepRetry:
		return "retry"
	case StepSplit:
		return "split"
	case StepUnloaded:
		return "unloaded"
	case StepRemoved:
		return "removed"
	}
	return "unknown"
}
