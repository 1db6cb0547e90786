package scenario

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/pingcap/tipocket-sqllab/pkg/netwatch"
)

// File is the YAML form of a scenario.
type File struct {
	Name   string           `yaml:"name"`
	Skip   string           `yaml:"skip"`
	Routes []netwatch.Route `yaml:"routes"`
	Steps  []StepSpec       `yaml:"steps"`
}

// StepSpec is one YAML step. Exactly one field must be set.
type StepSpec struct {
	Visit         *string      `yaml:"visit"`
	Type          *TypeSpec    `yaml:"type"`
	Focus         *string      `yaml:"focus"`
	Blur          *string      `yaml:"blur"`
	Press         *PressSpec   `yaml:"press"`
	Click         *ClickSpec   `yaml:"click"`
	ClickRowLink  *RowLinkSpec `yaml:"click-row-link"`
	Wait          []string     `yaml:"wait"`
	Arm           []string     `yaml:"arm"`
	Capture       *CaptureSpec `yaml:"capture"`
	ExpectShape   *ShapeSpec   `yaml:"expect-shape"`
	ExpectShapeOf *QuerySpec   `yaml:"expect-shape-of"`
	ExpectEqual   []string     `yaml:"expect-equal"`
	ExpectOracle  *QuerySpec   `yaml:"expect-oracle"`
	GenerateTitle *TitleSpec   `yaml:"generate-title"`
}

// TypeSpec for "type".
type TypeSpec struct {
	Selector string `yaml:"selector"`
	Text     string `yaml:"text"`
}

// PressSpec for "press".
type PressSpec struct {
	Selector string `yaml:"selector"`
	Chord    string `yaml:"chord"`
}

// ClickSpec for "click".
type ClickSpec struct {
	Selector string `yaml:"selector"`
	Index    int    `yaml:"index"`
}

// RowLinkSpec for "click-row-link".
type RowLinkSpec struct {
	Text string `yaml:"text"`
	Href string `yaml:"href"`
}

// CaptureSpec for "capture".
type CaptureSpec struct {
	Name     string `yaml:"name"`
	Selector string `yaml:"selector"`
}

// ShapeSpec for "expect-shape".
type ShapeSpec struct {
	Name    string `yaml:"name"`
	Columns int    `yaml:"columns"`
	Rows    int    `yaml:"rows"`
}

// QuerySpec for "expect-shape-of" and "expect-oracle".
type QuerySpec struct {
	Name  string `yaml:"name"`
	Query string `yaml:"query"`
}

// TitleSpec for "generate-title".
type TitleSpec struct {
	Var    string `yaml:"var"`
	Prefix string `yaml:"prefix"`
}

func (s StepSpec) build() (Step, error) {
	var (
		steps []Step
		err   error
	)
	add := func(st Step) { steps = append(steps, st) }
	if s.Visit != nil {
		add(Visit(*s.Visit))
	}
	if s.Type != nil {
		add(TypeInto(s.Type.Selector, s.Type.Text))
	}
	if s.Focus != nil {
		add(Focus(*s.Focus))
	}
	if s.Blur != nil {
		add(Blur(*s.Blur))
	}
	if s.Press != nil {
		add(Press(s.Press.Selector, s.Press.Chord))
	}
	if s.Click != nil {
		if s.Click.Index < 0 {
			err = errors.NotValidf("click index %d", s.Click.Index)
		}
		add(ClickNth(s.Click.Selector, s.Click.Index))
	}
	if s.ClickRowLink != nil {
		add(ClickRowLink(s.ClickRowLink.Text, s.ClickRowLink.Href))
	}
	if s.Wait != nil {
		if len(s.Wait) == 0 {
			err = errors.NotValidf("wait without aliases")
		}
		add(Wait(s.Wait...))
	}
	if s.Arm != nil {
		add(Arm(s.Arm...))
	}
	if s.Capture != nil {
		add(Capture(s.Capture.Name, s.Capture.Selector))
	}
	if s.ExpectShape != nil {
		add(ExpectShape(s.ExpectShape.Name, s.ExpectShape.Columns, s.ExpectShape.Rows))
	}
	if s.ExpectShapeOf != nil {
		add(ExpectShapeOf(s.ExpectShapeOf.Name, s.ExpectShapeOf.Query))
	}
	if s.ExpectEqual != nil {
		if len(s.ExpectEqual) != 2 {
			err = errors.NotValidf("expect-equal of %d snapshots", len(s.ExpectEqual))
		}
		add(ExpectEqual(first(s.ExpectEqual, 0), first(s.ExpectEqual, 1)))
	}
	if s.ExpectOracle != nil {
		add(ExpectOracle(s.ExpectOracle.Name, s.ExpectOracle.Query))
	}
	if s.GenerateTitle != nil {
		add(GenerateTitle(s.GenerateTitle.Var, s.GenerateTitle.Prefix))
	}
	if err != nil {
		return nil, err
	}
	if len(steps) != 1 {
		return nil, errors.NotValidf("step with %d actions", len(steps))
	}
	return steps[0], nil
}

func first(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

// Parse parses a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Annotate(err, "decode scenario")
	}
	if f.Name == "" {
		return nil, errors.NotValidf("scenario without name")
	}
	s := New(f.Name).WithRoutes(f.Routes...).Skipped(f.Skip)
	for i, spec := range f.Steps {
		st, err := spec.build()
		if err != nil {
			return nil, errors.Annotatef(err, "%s step %d", f.Name, i)
		}
		s.steps = append(s.steps, st)
	}
	if len(s.steps) == 0 && s.skip == "" {
		return nil, errors.NotValidf("scenario %s without steps", f.Name)
	}
	return s, nil
}

// LoadFile loads a YAML scenario file.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	s, err := Parse(data)
	return s, errors.Annotatef(err, "load %s", path)
}

// LoadDir loads every *.yaml and *.yml file of dir in name order.
func LoadDir(dir string) ([]*Scenario, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, errors.Trace(err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	scenarios := make([]*Scenario, 0, len(files))
	for _, f := range files {
		s, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
