// Command externgen generates link-time resolved proxies for Go interfaces
// annotated with //extern::interface and the matching stubs for types
// annotated with //extern::impl.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
