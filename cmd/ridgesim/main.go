// This file is part of Ridge32.
//
// Ridge32 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Ridge32 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Ridge32.  If not, see <https://www.gnu.org/licenses/>.

// Command ridgesim is a minimal host harness for the Ridge 32 core: it
// loads a raw memory image, steps the Processor, pretty-prints each
// event a step raises, and pretty-prints the register file once the
// steps are done (or the Processor halts). It owns
// none of the core's logic - every decision here is presentation.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jdersch/Ridge32/hardware/cpu"
	"github.com/jdersch/Ridge32/hardware/cpu/registers"
	"github.com/jdersch/Ridge32/logger"
	"github.com/k0kubun/pp/v3"
)

func main() {
	image := flag.String("image", "", "path to a raw memory image, loaded at the -load-at address")
	loadAt := flag.Uint("load-at", uint(registers.ResetVector), "physical address the image is loaded at")
	memSize := flag.Uint("mem", 1<<20, "physical memory size in bytes")
	steps := flag.Int("steps", 100, "maximum number of steps to execute")
	verbose := flag.Bool("v", false, "echo the core's internal log to stderr")
	flag.Parse()

	if *verbose {
		logger.StderrEcho()
	}

	printer := pp.New()
	printer.SetColoringEnabled(false)

	p := cpu.NewProcessor(cpu.Config{MemSizeBytes: uint32(*memSize)}, nil, nil)
	p.Reset()

	if *image != "" {
		img, err := os.ReadFile(*image)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ridgesim: %v\n", err)
			os.Exit(1)
		}
		p.Mem.Phys.Load(uint32(*loadAt), img)
		p.Regs.PC = uint32(*loadAt)
	}

	for i := 0; i < *steps && !p.Halted; i++ {
		result, err := p.Step()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ridgesim: halted: %v\n", err)
			break
		}
		if result.HasEvent {
			printer.Println(result.Event)
		}
	}

	printer.Println(p.Snapshot())
}
