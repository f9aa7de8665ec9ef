// Package report records the outcome of a build run as a JSON document.
//
// A report lists every planned wave and, for each project, whether it built,
// failed or was skipped because an earlier wave failed, together with the
// failing command and the paths of its log files.
//
// # Usage
//
// Write a report after a run:
//
//	r := report.New(workspace)
//	r.AddWave([]report.Project{{Name: "core", Status: report.StatusSucceeded}})
//	r.Finish(nil)
//	if err := r.WriteFile("droppings-report.json"); err != nil {
//	    log.Fatal(err)
//	}
//
// Read it back:
//
//	r, err := report.ReadFile("droppings-report.json")
//	fmt.Println(r.Failed())
package report
