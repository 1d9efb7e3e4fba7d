// Command bowtie samples, analyses and renders bow-tie risk models.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
