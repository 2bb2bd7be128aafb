package ipp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RunDebug single-steps the program under operator control, adapted
// from the teacher's RunProgramDebugMode: "n"/"next" executes one
// instruction, "r"/"run" free-runs until a breakpoint, "b <n>" toggles
// a breakpoint on instruction index n, "program" dumps the listing.
// This is ambient tooling behind --debug (SPEC_FULL.md §4.7); it never
// changes program semantics, only when control returns to the
// operator.
func (vm *VM) RunDebug(stdin io.Reader) error {
	fmt.Fprintln(vm.err, "Commands:\n\tn or next: execute next instruction\n\tr or run: run program\n\tb or break <n>: toggle breakpoint on instruction n\n\tprogram: list instructions")
	vm.printCurrentState()

	reader := bufio.NewReader(stdin)
	waitForInput := true
	lastBreakPC := -1

	for vm.pc < len(vm.prog.Instructions) {
		line := ""
		if waitForInput {
			fmt.Fprint(vm.err, "\n-> ")
			line, _ = reader.ReadString('\n')
			line = strings.ToLower(strings.TrimSpace(line))
		} else if vm.breakpoint[vm.pc] && lastBreakPC != vm.pc {
			fmt.Fprintln(vm.err, "breakpoint")
			vm.printCurrentState()
			waitForInput = true
			lastBreakPC = vm.pc
			continue
		}

		switch {
		case !waitForInput || line == "n" || line == "next":
			lastBreakPC = -1
			in := vm.prog.Instructions[vm.pc]
			halt, err := vm.step(in)
			if waitForInput {
				vm.printCurrentState()
			}
			if err != nil {
				return err
			}
			if halt {
				return nil
			}
		case line == "program":
			vm.printProgram()
		case line == "r" || line == "run":
			waitForInput = false
		case strings.HasPrefix(line, "b"):
			fields := strings.Fields(line)
			if len(fields) != 2 {
				fmt.Fprintln(vm.err, "usage: b <instruction index>")
				continue
			}
			idx, perr := strconv.Atoi(fields[1])
			if perr != nil {
				fmt.Fprintln(vm.err, "unknown instruction index:", perr)
				continue
			}
			if vm.breakpoint[idx] {
				delete(vm.breakpoint, idx)
			} else {
				vm.breakpoint[idx] = true
			}
		}
	}
	return nil
}

func (vm *VM) printCurrentState() {
	fmt.Fprintf(vm.err, "pc=%d executed=%d data-stack=%d call-stack=%d\n",
		vm.pc, vm.executed, len(vm.data), len(vm.calls))
}

func (vm *VM) printProgram() {
	for i, in := range vm.prog.Instructions {
		marker := "  "
		if i == vm.pc {
			marker = "->"
		}
		fmt.Fprintf(vm.err, "%s %4d  %s\n", marker, in.Order, in.Opcode)
	}
}
