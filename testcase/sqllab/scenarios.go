// Copyright 2021 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package testcase

import (
	"fmt"

	"github.com/pingcap/tipocket-sqllab/pkg/config"
	"github.com/pingcap/tipocket-sqllab/pkg/core"
	"github.com/pingcap/tipocket-sqllab/pkg/scenario"
)

// TitlePrefix starts the title of every saved query the suite creates.
const TitlePrefix = "SQLLAB TEST QUERY"

// Network aliases the scenarios wait on.
const (
	AliasQuery      = "sqlLabQuery"
	AliasSavedQuery = "getSavedQuery"
	AliasTables     = "getTables"
)

// The results grid is windowed, keep the limit below what it renders at once.
const rowLimit = 3

const (
	runButton  = 0
	saveButton = 1
	titleVar   = "title"
)

var (
	// RunQuerySQL is typed by the run-query scenario.
	RunQuerySQL = fmt.Sprintf("SELECT ds, gender, name, num FROM main.birth_names LIMIT %d", rowLimit)
	// SaveQuerySQL is saved and replayed by the save-query scenario.
	SaveQuerySQL = fmt.Sprintf("SELECT ds, gender, name, num FROM main.birth_names ORDER BY name LIMIT %d", rowLimit)
	// oracle queries address the table without the schema prefix
	runQueryOracleSQL  = fmt.Sprintf("SELECT ds, gender, name, num FROM birth_names LIMIT %d", rowLimit)
	saveQueryOracleSQL = fmt.Sprintf("SELECT ds, gender, name, num FROM birth_names ORDER BY name LIMIT %d", rowLimit)
)

// RunQuery types a query, runs it and checks the shape of the results.
func RunQuery() *scenario.Scenario {
	return scenario.New("run-query",
		scenario.TypeInto(config.SelectorEditor, RunQuerySQL),
		scenario.ClickNth(config.SelectorToolbarButton, runButton),
		scenario.Wait(AliasQuery),
		scenario.Capture("results", config.SelectorResults),
		scenario.ExpectShape("results", 4, rowLimit),
		scenario.ExpectShapeOf("results", RunQuerySQL),
		scenario.ExpectOracle("results", runQueryOracleSQL),
	)
}

// SaveQuery runs a query, saves it, reopens it from the saved query list and
// checks the replayed results are identical.
func SaveQuery() *scenario.Scenario {
	return scenario.New("save-query",
		scenario.GenerateTitle(titleVar, TitlePrefix),
		scenario.TypeInto(config.SelectorEditor, SaveQuerySQL),
		// the editor only commits its text to the query on blur
		scenario.Focus(config.SelectorEditor),
		scenario.Blur(config.SelectorEditor),
		scenario.Press(config.SelectorEditor, "ctrl+r"),
		scenario.Wait(AliasQuery),
		scenario.Capture("initial", config.SelectorResults),

		scenario.ClickNth(config.SelectorToolbarButton, saveButton),
		scenario.TypeInto(config.SelectorSaveInput, "${"+titleVar+"}"),
		scenario.ClickNth(config.SelectorSaveButton, 0),

		scenario.Visit(config.PathSavedQueries),
		// the editor fetched table metadata when it first loaded
		scenario.Arm(AliasSavedQuery, AliasTables),
		scenario.ClickRowLink("${"+titleVar+"}", "savedQueryId"),
		scenario.Wait(AliasSavedQuery, AliasTables),

		scenario.ClickNth(config.SelectorToolbarButton, runButton),
		scenario.Wait(AliasQuery),
		scenario.Capture("replayed", config.SelectorResults),
		scenario.ExpectEqual("initial", "replayed"),
		scenario.ExpectOracle("replayed", saveQueryOracleSQL),
	)
}

func init() {
	core.RegisterCase(RunQuery())
	core.RegisterCase(SaveQuery())
}
