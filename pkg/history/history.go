package history

import (
	"bufio"
	"os"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/juju/errors"
)

// Action is the phase of a step an event records.
type Action string

// Actions
const (
	ActionCall   Action = "call"
	ActionReturn Action = "return"
)

// Event is one line of the history file.
type Event struct {
	Time     time.Time     `json:"time"`
	Scenario string        `json:"scenario"`
	Step     int           `json:"step"`
	Name     string        `json:"name"`
	Action   Action        `json:"action"`
	Error    string        `json:"error,omitempty"`
	Kind     string        `json:"kind,omitempty"`
	Elapsed  time.Duration `json:"elapsed,omitempty"`
}

// Recorder appends step events to a file as JSON lines. A nil Recorder
// records nothing.
type Recorder struct {
	sync.Mutex
	f *os.File
}

// NewRecorder creates a recorder to log the history of a run.
func NewRecorder(name string) (*Recorder, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Trace(err)
	}

	return &Recorder{f: f}, nil
}

// Close closes the recorder.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return errors.Trace(r.f.Close())
}

// RecordCall records that step of scenario starts.
func (r *Recorder) RecordCall(scenario string, step int, name string) error {
	return r.record(Event{Scenario: scenario, Step: step, Name: name, Action: ActionCall})
}

// RecordReturn records how step of scenario ended.
func (r *Recorder) RecordReturn(scenario string, step int, name string, elapsed time.Duration, kind string, err error) error {
	ev := Event{Scenario: scenario, Step: step, Name: name, Action: ActionReturn, Elapsed: elapsed, Kind: kind}
	if err != nil {
		ev.Error = err.Error()
	}
	return r.record(ev)
}

func (r *Recorder) record(ev Event) error {
	if r == nil {
		return nil
	}
	ev.Time = time.Now()
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.Trace(err)
	}
	data = append(data, '\n')

	r.Lock()
	defer r.Unlock()
	_, err = r.f.Write(data)
	return errors.Trace(err)
}

// ReadHistory reads all events of a history file.
func ReadHistory(historyFile string) ([]Event, error) {
	f, err := os.Open(historyFile)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, errors.Annotatef(err, "history line %d", len(events)+1)
		}
		events = append(events, ev)
	}
	return events, errors.Trace(scanner.Err())
}
