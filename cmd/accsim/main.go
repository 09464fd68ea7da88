// Command accsim assembles and runs programs for the simulated accumulator
// machine. It is the external CLI collaborator spec.md §1 scopes out of the
// core: the assembler stepper and CPU packages stay silent and embeddable,
// and this command is the thing that prints.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"accsim/asm"
	"accsim/cpu"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "accsim",
		Short: "Assembler and micro-stepped simulator for the 9618-style accumulator machine",
	}

	var maxSteps int

	assembleCmd := &cobra.Command{
		Use:   "assemble [source.asm]",
		Short: "Assemble a source file to completion and print the emitted word image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLines(args[0])
			if err != nil {
				return err
			}
			words, err := asm.NewStepper(lines).RunToCompletion(maxSteps)
			if err != nil {
				return err
			}
			for _, w := range words {
				fmt.Println(cpu.FormatHex(w))
			}
			return nil
		},
	}
	assembleCmd.Flags().IntVar(&maxSteps, "max-steps", 1_000_000, "fail if assembly does not reach DONE within this many micro-steps")

	var inputBytes string
	var runMaxSteps int

	runCmd := &cobra.Command{
		Use:   "run [source.asm]",
		Short: "Assemble, load, and run a source file on the CPU to halt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLines(args[0])
			if err != nil {
				return err
			}
			words, err := asm.NewStepper(lines).RunToCompletion(maxSteps)
			if err != nil {
				return fmt.Errorf("assemble: %w", err)
			}

			c := cpu.NewCPU()
			if err := c.LoadProgram(words); err != nil {
				return err
			}
			if inputBytes != "" {
				c.FeedInput([]byte(inputBytes))
			}

			for i := 0; i < runMaxSteps; i++ {
				halted, err := c.Step()
				if err != nil && err != cpu.ErrAwaitingInput {
					return fmt.Errorf("step %d: %w", i, err)
				}
				if halted {
					break
				}
			}
			fmt.Println(c.DebugString())
			if out := c.Output(); len(out) > 0 {
				fmt.Printf("output: % X\n", out)
			}
			return nil
		},
	}
	runCmd.Flags().IntVar(&runMaxSteps, "max-cpu-steps", 1_000_000, "give up after this many RTN micro-operations without halting")
	runCmd.Flags().StringVar(&inputBytes, "input", "", "bytes pre-supplied to the IN instruction's input port")

	stepCmd := &cobra.Command{
		Use:   "step [source.asm]",
		Short: "Assemble, load, and print a CPU snapshot after every RTN micro-operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLines(args[0])
			if err != nil {
				return err
			}
			words, err := asm.NewStepper(lines).RunToCompletion(maxSteps)
			if err != nil {
				return fmt.Errorf("assemble: %w", err)
			}

			c := cpu.NewCPU()
			if err := c.LoadProgram(words); err != nil {
				return err
			}
			if inputBytes != "" {
				c.FeedInput([]byte(inputBytes))
			}

			for i := 0; i < runMaxSteps; i++ {
				halted, err := c.Step()
				fmt.Println(c.DebugString())
				if err != nil && err != cpu.ErrAwaitingInput {
					return fmt.Errorf("step %d: %w", i, err)
				}
				if halted {
					return nil
				}
			}
			return fmt.Errorf("did not halt within %d steps", runMaxSteps)
		},
	}
	stepCmd.Flags().StringVar(&inputBytes, "input", "", "bytes pre-supplied to the IN instruction's input port")

	rootCmd.AddCommand(assembleCmd, runCmd, stepCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readLines reads a source file into raw lines, exactly as the assembler
// stepper's TRIM phase expects: no pre-trimming here, that is the
// stepper's own job.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
