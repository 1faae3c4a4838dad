// Package config loads the YAML configuration file of the authenticator.
//
// A configuration is processed in three steps: [Load] decodes the file,
// [Validate] checks it without mutating it, and [Normalize] fills in
// defaults. Command-line flags override the normalized values.
//
//	lock: true
//	log:
//	  level: info
//	  format: dev
//	controllers:
//	  - type: 181
//	    table1: "650a7354 766a0abb ..."
//	    table2: "c6e00bf3 d5a79147 ..."
//	    table3: "391c0cb3 4ed8aa4a ..."
//
// Configured controllers extend the built-in key tables; see
// [Config.Registry].
package config
