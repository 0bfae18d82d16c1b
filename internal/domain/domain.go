// Package domain contains the core data structures for Kindling,
// independent of the storage or API layers.
package domain

// Stage is an idea's position in its lifecycle.
type Stage string

const (
	StageSpark     Stage = "spark"
	StageExploring Stage = "exploring"
	StageBuilding  Stage = "building"
	StageShipped   Stage = "shipped"
	StagePaused    Stage = "paused"
)

// Stages lists every stage in board order.
var Stages = []Stage{StageSpark, StageExploring, StageBuilding, StageShipped, StagePaused}

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

// Label is the board column name shown for the stage.
func (s Stage) Label() string {
	switch s {
	case StageSpark:
		return "Spark"
	case StageExploring:
		return "Kindling"
	case StageBuilding:
		return "Blazing"
	case StageShipped:
		return "Beacon"
	case StagePaused:
		return "Banked"
	}
	return string(s)
}

// IdeaType classifies what kind of thing an idea is.
type IdeaType string

const (
	TypePermasolution IdeaType = "permasolution"
	TypeProject       IdeaType = "project"
	TypeExperiment    IdeaType = "experiment"
	TypeLearning      IdeaType = "learning"
)

var IdeaTypes = []IdeaType{TypePermasolution, TypeProject, TypeExperiment, TypeLearning}

func (t IdeaType) Valid() bool {
	for _, known := range IdeaTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Effort is an ordinal size estimate, smallest first.
type Effort string

const (
	EffortTrivial Effort = "trivial"
	EffortSmall   Effort = "small"
	EffortMedium  Effort = "medium"
	EffortLarge   Effort = "large"
	EffortEpic    Effort = "epic"
)

var Efforts = []Effort{EffortTrivial, EffortSmall, EffortMedium, EffortLarge, EffortEpic}

func (e Effort) Valid() bool {
	for _, known := range Efforts {
		if e == known {
			return true
		}
	}
	return false
}

// Rank returns the ordinal position of the effort, or -1 when unknown.
func (e Effort) Rank() int {
	for i, known := range Efforts {
		if e == known {
			return i
		}
	}
	return -1
}

// Source records where a theme or learning came from.
type Source string

const (
	SourcePAIA   Source = "paia"
	SourceManual Source = "manual"
)
