// Command confenv resolves configuration keys the way a node would see them.
//
//	confenv get dubbo.application.name -D dubbo.application.name=demo
//	confenv get timeout --prefix dubbo.protocols --id tri --properties ./dubbo.properties
//	confenv runtime "tri://127.0.0.1:50051/org.demo.Greeter?application=demo" timeout --method sayHello
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
