// The cachelib command drives the hardware-structure models with synthetic
// traces, records their activity, and reports on recorded databases.
package main

func main() {
	Execute()
}
