package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iti/fattree"
)

var (
	topoK      int
	topoOutput string
)

var topoCmd = &cobra.Command{
	Use:   "topo",
	Short: "Build a Fat-Tree and print its structural summary",
	Long: `Build the k-ary Fat-Tree once, print the per-layer node counts and
link totals, and optionally export the full node/link listing for an
external diagram renderer.`,
	RunE: showTopo,
}

func init() {
	topoCmd.Flags().IntVarP(&topoK, "k", "k", 4, "Fat-Tree port count (even, >= 2)")
	topoCmd.Flags().StringVarP(&topoOutput, "output", "o", "", "write the node/link listing to this file (yaml or json)")
}

func showTopo(cmd *cobra.Command, args []string) error {
	topo, err := fattree.BuildFatTree(topoK)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Layer", "Nodes", "Ports Each"})
	t.AppendRow(table.Row{"core", topo.Params.NumCore, topo.K})
	t.AppendRow(table.Row{"aggregation", topo.Params.NumPods * topo.Params.AggPerPod, topo.K})
	t.AppendRow(table.Row{"edge", topo.Params.NumPods * topo.Params.EdgePerPod, topo.K})
	t.AppendRow(table.Row{"host", topo.Params.TotalHosts, 1})
	t.AppendFooter(table.Row{"links", topo.Params.TotalLinks, ""})
	t.Render()
	fmt.Printf("pods: %d, hosts per edge switch: %d\n", topo.Params.NumPods, topo.Params.HostsPerEdge)

	if topoOutput != "" {
		td := topo.Desc()
		if err := td.WriteToFile(topoOutput); err != nil {
			return err
		}
		log.Info().Str("file", topoOutput).Int("nodes", len(td.Nodes)).Int("links", len(td.Links)).Msg("wrote topology listing")
	}
	return nil
}
