// Copyright 2021-2024 hhorai. All rights reserved.
// Use of this source code is governed by a MIT license that can be found
// in the LICENSE file.

// Command pdcpsim drives a paired gNB/UE PDCP bearer for manual and
// scripted exercise of the nr-pdcp package.
package main

import (
	"fmt"
	"os"

	"github.com/hhorai/nr-pdcp/cmd/pdcpsim/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
