package cmd

import (
	"context"
	"log"
	"time"

	"github.com/anoixa/pos-admin/config"
	"github.com/anoixa/pos-admin/internal/app"
	"github.com/spf13/cobra"
)

// pruneCmd represents the prune command
// 过期的配对码无需删除即失效，prune 只是数据库清理
var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete stale pairing codes",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		cfg := config.Get()

		container := app.NewContainer(cfg)
		if err := container.InitDatabase(); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer container.Close()

		cutoff := time.Now().Add(-cfg.PairingPruneGrace)
		deleted, err := container.PairingRepo.DeleteStaleBefore(context.Background(), cutoff)
		if err != nil {
			log.Fatalf("Failed to prune pairing codes: %v", err)
		}

		log.Printf("Pruned %d stale pairing codes (cutoff: %s)", deleted, cutoff.Format(time.RFC3339))
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
