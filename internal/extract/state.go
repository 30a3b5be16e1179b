package extract

import (
	"github.com/ppiankov/tautohetohe/internal/lang"
	"github.com/ppiankov/tautohetohe/internal/model"
)

// runState is the utterance accumulator's position within a day
type runState int

const (
	noUtterance runState = iota
	targetRun
	otherRun
)

func (s runState) String() string {
	switch s {
	case noUtterance:
		return "no-utterance"
	case targetRun:
		return "target-run"
	case otherRun:
		return "other-run"
	}
	return "unknown"
}

// sentenceClass is the classifier's verdict on one sentence
type sentenceClass int

const (
	classTarget sentenceClass = iota
	classOther
)

// transition says what a sentence does to the accumulator
type transition struct {
	next   runState
	flush  bool // emit the open buffer first
	begin  bool // a new run starts: bump the utterance counter
	start  bool // replace the buffer with the sentence
	append bool // add the sentence to the buffer
}

var transitions = map[runState]map[sentenceClass]transition{
	noUtterance: {
		classTarget: {next: targetRun, begin: true, start: true},
		classOther:  {next: otherRun, flush: true, begin: true},
	},
	targetRun: {
		classTarget: {next: targetRun, append: true},
		classOther:  {next: otherRun, flush: true, begin: true},
	},
	otherRun: {
		classTarget: {next: targetRun, begin: true, start: true},
		classOther:  {next: otherRun},
	},
}

// VolumeParseState is the running parse state of the day a volume is
// currently in. A fresh state is made for every day segment, so speaker and
// utterance numbering never leak between days or volumes.
type VolumeParseState struct {
	Day      model.DaySegment
	Speaker  string
	Sequence int
	Buffer   []string
	Totals   lang.Counts

	Utterances []model.UtteranceRecord
	Rejected   int

	run runState
}

func newParseState(day model.DaySegment) *VolumeParseState {
	return &VolumeParseState{Day: day}
}

// seed sets the run state at the start of a paragraph: an open buffer
// carried over from the previous paragraph continues the target run
func (st *VolumeParseState) seed() {
	if len(st.Buffer) > 0 {
		st.run = targetRun
		return
	}
	st.run = noUtterance
}
