package control

import (
	"time"

	"github.com/google/uuid"

	"github.com/pingcap/tipocket-sqllab/pkg/cluster"
)

// Config is the configuration for the controller.
type Config struct {
	// RunID identifies the run in reports and artifact names.
	RunID string
	// Cases are the names of the cases to run, empty means all registered.
	Cases []string
	// Nodes are the application endpoints every case runs against.
	Nodes []cluster.Node

	// ReadyPath is polled on every node before the run, empty skips it.
	ReadyPath    string
	ReadyTimeout time.Duration
	// CaseTimeout bounds SetUp and Start of one case.
	CaseTimeout     time.Duration
	TearDownTimeout time.Duration

	// Report is where the JSON report goes, empty skips writing it.
	Report string
}

func (c *Config) adjust() {
	if c.RunID == "" {
		c.RunID = uuid.New().String()
	}

	if c.ReadyTimeout == 0 {
		c.ReadyTimeout = 2 * time.Minute
	}

	if c.CaseTimeout == 0 {
		c.CaseTimeout = 5 * time.Minute
	}

	if c.TearDownTimeout == 0 {
		c.TearDownTimeout = 30 * time.Second
	}
}
