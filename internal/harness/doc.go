// Package harness runs conformance scenarios against the compiler.
//
// A scenario is a YAML file holding one request and the expectations on
// its compiled output:
//
//	name: temperature_average
//	description: AVG over a sensor reading
//	request_file: requests/average.json
//	expect:
//	  contains:
//	    - "(AVG(?temperature) AS ?AvgTemperature)"
//	  not_contains:
//	    - "UNION"
//	  variables: ["?sensor", "?AvgTemperature"]
//	golden: true
//
// The request is given either inline under `request` or as a path under
// `request_file`, resolved relative to the scenario file. A scenario that
// expects a failure names the error code under `expect.error_code`; a
// scenario that expects filters to be dropped lists their reasons under
// `expect.ignored`.
//
// Scenarios marked `golden` also compare the full query text against a
// golden file. In Go tests RunWithGolden does this with goldie under
// testdata/golden; the CLI uses GoldenPath, CompareGolden and UpdateGolden
// so golden files can live next to the scenarios.
package harness
