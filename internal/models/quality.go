package models

// Quality grades a single move by how much evaluation the mover gave
// up by playing it.
type Quality string

const (
	QualityExcellent  Quality = "excellent"
	QualityGood       Quality = "good"
	QualityInaccuracy Quality = "inaccuracy"
	QualityMistake    Quality = "mistake"
	QualityBlunder    Quality = "blunder"

	// QualityUnknown marks plies the evaluation oracle could not
	// score. It is a grade of the data, not of the move.
	QualityUnknown Quality = "unknown"
)

// Qualities returns all labels from best to worst, unknown last.
func Qualities() []Quality {
	return []Quality{
		QualityExcellent,
		QualityGood,
		QualityInaccuracy,
		QualityMistake,
		QualityBlunder,
		QualityUnknown,
	}
}

func (q Quality) Valid() bool {
	switch q {
	case QualityExcellent, QualityGood, QualityInaccuracy, QualityMistake, QualityBlunder, QualityUnknown:
		return true
	}
	return false
}

func (q Quality) String() string {
	return string(q)
}
