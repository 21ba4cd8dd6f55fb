package index

// Stage is a state of an indexing run.
type Stage int

const (
	StageIdle Stage = iota
	StagePreparing
	StageCollectingPartitions
	StageProcessingBatches
	StageRefining
	StageSavingIndex
	StageBuildingAutocomplete
	StageSavingAutocomplete
	StageCompleted
	StageCancelled
	StageFailed
)

var stageNames = [...]string{
	StageIdle:                 "idle",
	StagePreparing:            "preparing",
	StageCollectingPartitions: "collecting_partitions",
	StageProcessingBatches:    "processing_batches",
	StageRefining:             "refining",
	StageSavingIndex:          "saving_index",
	StageBuildingAutocomplete: "building_autocomplete",
	StageSavingAutocomplete:   "saving_autocomplete",
	StageCompleted:            "completed",
	StageCancelled:            "cancelled",
	StageFailed:               "failed",
}

var stageLabels = [...]string{
	StageIdle:                 "Idle",
	StagePreparing:            "Preparing",
	StageCollectingPartitions: "Collecting batches",
	StageProcessingBatches:    "Processing batches",
	StageRefining:             "Refining keywords",
	StageSavingIndex:          "Saving index",
	StageBuildingAutocomplete: "Building autocomplete",
	StageSavingAutocomplete:   "Saving autocomplete",
	StageCompleted:            "Completed",
	StageCancelled:            "Cancelled",
	StageFailed:               "Failed",
}

// String returns the snake_case stage name used in logs and metrics.
func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Label returns a display name.
func (s Stage) Label() string {
	if s < 0 || int(s) >= len(stageLabels) {
		return "Unknown"
	}
	return stageLabels[s]
}

// Terminal reports whether s ends a run.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageCancelled || s == StageFailed
}

// PipelineStages lists the working stages in execution order.
func PipelineStages() []Stage {
	return []Stage{
		StagePreparing,
		StageCollectingPartitions,
		StageProcessingBatches,
		StageRefining,
		StageSavingIndex,
		StageBuildingAutocomplete,
		StageSavingAutocomplete,
	}
}

// Outcome is how a run ended.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeCancelled
	OutcomeFailed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
