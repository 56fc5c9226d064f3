package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloud-lever/roap/planner/phases"
	"github.com/cloud-lever/roap/solver"
	"github.com/cloud-lever/roap/types"
	"github.com/cloud-lever/roap/util"
)

// solveCmd represents the solve problem command
var solveCmd = &cobra.Command{
	Use:   "solve PATH",
	Short: "Solve a problem document",
	Long: `Solve the problems of the document given in PATH.
	The problem named in --phase-i-id decides the reserved VMs for the whole
	reservation period; when --phase-ii-id is given, that problem is then
	solved timeslot by timeslot reusing the reserved VMs of the first one.`,
	Args: cobra.ExactArgs(1),
	Run:  solve,
}

func init() {
	solveCmd.Flags().String("phase-i-id", "", "Id of the problem to solve in phase I")
	solveCmd.Flags().String("phase-ii-id", "", "Id of the problem to solve in phase II")
	solveCmd.Flags().Float64("frac-gap", 0, "Optimality gap accepted by the solver")
	solveCmd.Flags().Float64("max-seconds", 0, "Time limit for each solve")
	solveCmd.Flags().Int("threads", 0, "Threads the solver may use")
	solveCmd.Flags().Bool("gcd", true, "Rescale the coefficients by their common divisor")
	solveCmd.Flags().String("output", "", "File to write the solutions to")
	solveCmd.MarkFlagRequired("phase-i-id")
}

func solve(cmd *cobra.Command, args []string) {
	phaseIID := cmd.Flag("phase-i-id").Value.String()
	phaseIIID := cmd.Flag("phase-ii-id").Value.String()
	output := cmd.Flag("output").Value.String()
	fracGap, _ := cmd.Flags().GetFloat64("frac-gap")
	maxSeconds, _ := cmd.Flags().GetFloat64("max-seconds")
	threads, _ := cmd.Flags().GetInt("threads")
	useGcd, _ := cmd.Flags().GetBool("gcd")

	problems, err := util.ReadProblemsFile(args[0])
	if err != nil {
		log.Error("Document %s could not be read. Details: %s", args[0], err.Error())
		os.Exit(1)
	}
	problemI, ok := problems[phaseIID]
	if !ok {
		log.Error("Problem %s is not in the document", phaseIID)
		os.Exit(1)
	}

	orchestrator := solver.NewOrchestrator(solver.Config{
		FracGap:    fracGap,
		MaxSeconds: maxSeconds,
		Threads:    threads,
	})

	phaseI, err := phases.NewPhaseI(problemI, orchestrator)
	if err != nil {
		log.Error("Problem %s is not consistent. Details: %s", phaseIID, err.Error())
		os.Exit(1)
	}
	solutionI, err := phaseI.Solve(useGcd)
	if err != nil {
		log.Error("Phase I could not be solved. Details: %s", err.Error())
		os.Exit(1)
	}
	reportPhaseI(solutionI)

	var solutionII *types.SolutionII
	if phaseIIID != "" {
		solutionII = solvePhaseII(problems, phaseIIID, solutionI, orchestrator)
	}

	if output != "" {
		solutionsII := []*types.SolutionII{}
		if solutionII != nil {
			solutionsII = append(solutionsII, solutionII)
		}
		err = util.WriteSolutionsFile(output, []*types.SolutionI{solutionI}, solutionsII)
		if err != nil {
			log.Error("Solutions could not be written to %s. Details: %s", output, err.Error())
			os.Exit(1)
		}
		fmt.Println("Solutions written to " + output)
	}
}

func solvePhaseII(problems map[string]*types.Problem, phaseIIID string,
	solutionI *types.SolutionI, orchestrator *solver.Orchestrator) *types.SolutionII {

	if solutionI.SolvingStats.Algorithm.Status != types.StatusOptimal &&
		solutionI.SolvingStats.Algorithm.Status != types.StatusTrivial {
		log.Error("Phase II needs an optimal phase I solution")
		os.Exit(1)
	}
	problemII, ok := problems[phaseIIID]
	if !ok {
		log.Error("Problem %s is not in the document", phaseIIID)
		os.Exit(1)
	}
	phaseII, err := phases.NewPhaseII(problemII, solutionI, orchestrator)
	if err != nil {
		log.Error("Problem %s is not consistent. Details: %s", phaseIIID, err.Error())
		os.Exit(1)
	}
	solutionII, err := phaseII.SolvePeriod(nil)
	if err != nil {
		log.Error("Phase II could not be solved. Details: %s", err.Error())
		os.Exit(1)
	}
	fmt.Printf("Phase II status: %s, total cost: %v\n",
		solutionII.GlobalSolvingStats.Status,
		util.RoundN(solutionII.GlobalSolvingStats.OptimalCost, 2))
	return solutionII
}

func reportPhaseI(solution *types.SolutionI) {
	status := solution.SolvingStats.Algorithm.Status
	fmt.Printf("Phase I status: %s\n", status)
	if status != types.StatusOptimal && status != types.StatusTrivial {
		return
	}
	fmt.Printf("Optimal cost: %v\n", util.RoundN(solution.SolvingStats.OptimalCost, 2))
	for i, iclass := range solution.ReservedAllocation.InstanceClasses {
		fmt.Printf("Reserved %s: %d\n", iclass.ID, solution.ReservedAllocation.VMsNumber[i])
	}
}
