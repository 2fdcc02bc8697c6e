package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/nlsearch/internal/config"
	apperrors "github.com/copyleftdev/nlsearch/internal/errors"
	"github.com/copyleftdev/nlsearch/internal/geometry"
	"github.com/copyleftdev/nlsearch/internal/logging"
	"github.com/copyleftdev/nlsearch/internal/objective"
	"github.com/copyleftdev/nlsearch/internal/optimization"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		method, objectiveName string
		startX, startY        float64
		tolerance, stepFactor float64
		steps, maxIterations  int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single search and print the minimum found",
		Long: `Runs one search with the settings from the SEARCH_* environment
variables, overridden by any flags given, and prints the minimum and the
gradient there.

The trigonometric objective takes its arguments in degrees, so the gradient
it reports carries a factor of pi/180.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			search := a.cfg.Search
			flags := cmd.Flags()
			if flags.Changed("method") {
				search.Method = method
			}
			if flags.Changed("objective") {
				search.Objective = objectiveName
			}
			if flags.Changed("start-x") {
				search.StartX = startX
			}
			if flags.Changed("start-y") {
				search.StartY = startY
			}
			if flags.Changed("tolerance") {
				search.Tolerance = tolerance
			}
			if flags.Changed("step-factor") {
				search.StepFactor = stepFactor
			}
			if flags.Changed("steps") {
				search.Steps = steps
			}
			if flags.Changed("max-iterations") {
				search.MaxIterations = maxIterations
			}
			return runSearch(cmd.Context(), cmd.OutOrStdout(), a.logger, search)
		},
	}

	f := cmd.Flags()
	f.StringVar(&method, "method", "", "Search method: gradient or edge")
	f.StringVar(&objectiveName, "objective", "", "Objective: polynomial, trigonometric (degrees), bowl (or 1, 2, 3)")
	f.Float64Var(&startX, "start-x", 0, "Start point x")
	f.Float64Var(&startY, "start-y", 0, "Start point y")
	f.Float64Var(&tolerance, "tolerance", 0, "Distance between consecutive iterates that counts as converged")
	f.Float64Var(&stepFactor, "step-factor", 0, "Gradient descent step length")
	f.IntVar(&steps, "steps", 0, "Fibonacci steps per edge-search line search")
	f.IntVar(&maxIterations, "max-iterations", 0, "Iteration cap")
	return cmd
}

// runSearch runs one search described by s and prints its result to out.
func runSearch(ctx context.Context, out io.Writer, logger *logging.Logger, s config.Search) error {
	if ctx == nil {
		ctx = context.Background()
	}

	method, err := optimization.ParseMethod(s.Method)
	if err != nil {
		return err
	}
	obj, err := objective.Lookup(s.Objective)
	if err != nil {
		return err
	}

	settings := optimization.Settings{
		Tolerance:     s.Tolerance,
		StepFactor:    s.StepFactor,
		Steps:         s.Steps,
		MaxIterations: s.MaxIterations,
	}
	zl := logging.NewZapLogger(logger.WithField("command", "run"))
	minimizer, err := optimization.New(method, settings, optimization.WithLogger(zl))
	if err != nil {
		return err
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	res, err := minimizer.Minimize(ctx, obj, geometry.Pt(s.StartX, s.StartY))
	if err != nil {
		return apperrors.Wrap(err, "search failed").WithOperation("run").WithComponent(method.String())
	}

	fmt.Fprintf(out, "The found minimum is at ( %s ; %s )\n", formatNumber(res.Minimum.X), formatNumber(res.Minimum.Y))
	fmt.Fprintf(out, "Its gradient is ( %s ; %s )\n", formatNumber(res.Gradient.X), formatNumber(res.Gradient.Y))
	return nil
}

// formatNumber prints v in the shortest decimal form that round-trips,
// keeping a ".0" on integral values.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.ContainsAny(s, ".IN") {
		return s
	}
	return s + ".0"
}
