package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dtnsim/internal/applog"
	"dtnsim/internal/config"
	"dtnsim/internal/cpio"
	"dtnsim/internal/engine"
	"dtnsim/internal/metrics"
	"dtnsim/internal/viz"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run a single simulation",
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringP("model", "m", "", "path to model config JSON")
	runCmd.Flags().StringP("agents", "a", "", "path to agents config JSON")
	runCmd.Flags().IntP("routing-protocol", "r", -1, "override routing_protocol: 0=CGR, 1=Epidemic, 2=Spray")
	runCmd.Flags().BoolP("no-viz", "n", false, "disable the websocket visualization server")
	runCmd.Flags().Bool("log-metrics", false, "write a metrics summary file to out/")
	runCmd.Flags().Bool("make-contact-plan", false, "capture the realized contact plan and write it to out/")
	runCmd.Flags().Bool("correctness", false, "enable runtime invariant checking")
	runCmd.Flags().Bool("debug", false, "console debug logging instead of the rotating file log")
	runCmd.Flags().String("viz-addr", ":8080", "address for the visualization websocket server")

	_ = runCmd.MarkFlagRequired("model")
	_ = runCmd.MarkFlagRequired("agents")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	modelPath, _ := cmd.Flags().GetString("model")
	agentsPath, _ := cmd.Flags().GetString("agents")
	rpOverride, _ := cmd.Flags().GetInt("routing-protocol")
	noViz, _ := cmd.Flags().GetBool("no-viz")
	logMetrics, _ := cmd.Flags().GetBool("log-metrics")
	makeContactPlan, _ := cmd.Flags().GetBool("make-contact-plan")
	correctness, _ := cmd.Flags().GetBool("correctness")
	debug, _ := cmd.Flags().GetBool("debug")
	vizAddr, _ := cmd.Flags().GetString("viz-addr")

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
	if makeContactPlan {
		mc.MakeContactPlan = true
	}
	if logMetrics {
		mc.LogMetrics = true
	}

	log := applog.New(debug)

	sim, err := engine.NewSimulation(mc, ac, log)
	if err != nil {
		return err
	}

	var vizServer *viz.Server
	if !noViz {
		vizServer = viz.NewServer(vizAddr, sim, log)
		go func() {
			if err := vizServer.Serve(); err != nil {
				log.Warn().Err(err).Msg("viz server stopped")
			}
		}()
	}

	for !sim.Done() {
		sim.Tick()
		if vizServer != nil {
			vizServer.Publish(sim.Snapshots())
		}
	}

	if err := os.MkdirAll("out", 0o755); err != nil {
		return fmt.Errorf("creating out directory: %w", err)
	}

	if mc.MakeContactPlan {
		plan := sim.FinalizeContactPlan()
		f, err := os.Create(fmt.Sprintf("out/%s_contact_plan.json", mc.ScenarioName))
		if err != nil {
			return fmt.Errorf("creating contact plan output: %w", err)
		}
		defer f.Close()
		if err := cpio.WriteJSON(f, plan); err != nil {
			return fmt.Errorf("writing contact plan: %w", err)
		}
	}

	if mc.LogMetrics {
		summary := metrics.FromResults(sim.Results())
		ts := time.Now()
		text := metrics.RenderSingle(mc.Title, mc.ScenarioName, routingProtocolName(mc.RoutingProtocol), ts, summary)
		outPath := metrics.OutputFileName(mc.ScenarioName, routingProtocolName(mc.RoutingProtocol), ts)
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing metrics output: %w", err)
		}
	}

	return nil
}

func routingProtocolName(p int) string {
	switch p {
	case 1:
		return "epidemic"
	case 2:
		return "spray_and_wait"
	default:
		return "cgr"
	}
}
