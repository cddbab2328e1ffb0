// Package planner handles the planning phase of a template update.
//
// The planner compares the manifest shipped with a fresh template tree against
// the manifest recorded in the project, classifies every file, and then applies
// the resulting plan to the project tree.
//
// Key responsibilities:
//   - Classify each file as skip, auto update or prompt
//   - Annotate files that are new to tracking or removed upstream
//   - Copy and delete files, asking for confirmation where local edits would be lost
//   - Report exactly what was applied, including on a partial failure
package planner
