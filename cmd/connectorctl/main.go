// Command connectorctl runs connector operations from the command line and
// prints the resulting envelope as JSON.
//
// Configuration comes from a YAML file (--config) overlaid with environment
// variables prefixed CONNECTORS_, e.g. CONNECTORS_QUEUE_TRANSPORT=jetstream.
//
//	connectorctl config init > connectors.yaml
//	connectorctl --config connectors.yaml cql read "SELECT * FROM users"
//	connectorctl search add orders order o-1 '{"id":"o-1"}'
//	connectorctl queue insert jobs 'hello' --metadata '{"k":"v"}'
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var se *statusError
		if errors.As(err, &se) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
