package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dtnsim/internal/applog"
	"dtnsim/internal/batch"
	"dtnsim/internal/config"
	"dtnsim/internal/metrics"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Args:  cobra.NoArgs,
	Short: "Run N independent simulation trials and report aggregate metrics",
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().StringP("model", "m", "", "path to model config JSON")
	batchCmd.Flags().StringP("agents", "a", "", "path to agents config JSON")
	batchCmd.Flags().IntP("trials", "b", 1, "number of independent trials")
	batchCmd.Flags().IntP("routing-protocol", "r", -1, "override routing_protocol: 0=CGR, 1=Epidemic, 2=Spray")
	batchCmd.Flags().Bool("correctness", false, "enable runtime invariant checking")
	batchCmd.Flags().Bool("debug", false, "console debug logging instead of the rotating file log")

	_ = batchCmd.MarkFlagRequired("model")
	_ = batchCmd.MarkFlagRequired("agents")
}

func runBatch(cmd *cobra.Command, args []string) error {
	modelPath, _ := cmd.Flags().GetString("model")
	agentsPath, _ := cmd.Flags().GetString("agents")
	trials, _ := cmd.Flags().GetInt("trials")
	rpOverride, _ := cmd.Flags().GetInt("routing-protocol")
	correctness, _ := cmd.Flags().GetBool("correctness")
	debug, _ := cmd.Flags().GetBool("debug")

	if trials < 1 {
		return fmt.Errorf("--trials must be at least 1")
	}

	mc, err := config.LoadModelConfig(modelPath)
	if err != nil {
		return err
	}
	ac, err := config.LoadAgentsConfig(agentsPath)
	if err != nil {
		return err
	}
	if rpOverride >= 0 {
		mc.RoutingProtocol = rpOverride
	}
	if correctness {
		mc.Correctness = true
	}

	log := applog.New(debug)

	summaries, err := batch.Run(context.Background(), mc, ac, log, trials)
	if err != nil {
		return err
	}

	agg := metrics.AggregateBatch(summaries)

	if err := os.MkdirAll("out", 0o755); err != nil {
		return fmt.Errorf("creating out directory: %w", err)
	}

	protoName := routingProtocolName(mc.RoutingProtocol)
	ts := time.Now()
	text := metrics.RenderBatch(mc.Title, mc.ScenarioName, protoName, ts, trials, agg)
	outPath := metrics.OutputFileName(mc.ScenarioName, protoName, ts)
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing batch metrics output: %w", err)
	}

	fmt.Print(text)
	return nil
}
