// Package harness provides conformance testing for tikrana configurations.
//
// A scenario describes one workbook, the configuration and source used to
// process it, optional user input, and what processing must produce. The
// harness builds a real .xlsx file from the scenario's typed cells, runs it
// through the engine, and checks the outcome.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: coral_with_due_date
//	description: "Coral order completes once the due date is supplied"
//	config: ../config/coral.yaml
//	source: coral
//	workbook:
//	  filename: pedido.xlsx
//	  sheets:
//	    - name: Pedido
//	      cells:
//	        B3: "12345"          # quoted scalars are text
//	        B4: 2024-01-15       # plain timestamps are date cells
//	        A13: 68077           # ints and floats are numbers
//	        C13: true            # booleans
//	        D13: {number: 0.5, format: "0.00%"}
//	        E13: {date: 2024-01-20, format: "dd/mm/yyyy"}
//	input:
//	  DocDueDate: "2024/01/20"
//	expect:
//	  success: true
//	  archive_name: sap-pedido-coral-12345.zip
//	  header_contains: ["20240120"]
//	  detail_lines: 4
//
// The config path is resolved relative to the scenario file. A workbook may
// give raw bytes instead of sheets to exercise file validation.
//
// # Expectations
//
//   - success: whether processing must succeed (required)
//   - category: failure category of an unsuccessful run
//   - message_contains: substring of the failure message
//   - missing: the exact list of missing header fields
//   - archive_name: the archive filename of a successful run
//   - header_contains, detail_contains: substrings of the rendered files
//   - detail_lines: number of lines in the rendered detail file
//   - warnings: number of validation warnings
//   - extracted: subset match against the merged header record
//
// # Deterministic Testing
//
// Every scenario runs with a fixed run identifier (run_id, or
// "test-run-default") and discarded logs, so the rendered output of a
// scenario is byte-identical across runs and can be compared against golden
// snapshots.
package harness
